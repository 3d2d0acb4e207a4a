package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@example.com", "USER@EXAMPLE.COM"}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}
	invalid := []string{"", "plain", "a@b", "a b@c.com", "@example.com", "a@.com"}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}

func TestValidBDPhone(t *testing.T) {
	valid := []string{
		"+8801712345678",
		"8801712345678",
		"01712345678",
		"017 1234 5678",
		"017-1234-5678",
		"01912345678",
	}
	for _, s := range valid {
		assert.True(t, ValidBDPhone(s), s)
	}
	invalid := []string{
		"",
		"0171234567",   // too short
		"017123456789", // too long
		"01212345678",  // 1[3-9] operator prefix violated
		"+4401712345678",
		"not a phone",
	}
	for _, s := range invalid {
		assert.False(t, ValidBDPhone(s), s)
	}
}

func TestExtractContact(t *testing.T) {
	email, phone := extractContact("Name: Rafi Ahmed | Email: rafi@example.com | Phone: +8801712345678")
	assert.Equal(t, "rafi@example.com", email)
	assert.Equal(t, "+8801712345678", phone)

	email, phone = extractContact("Email: only@example.com")
	assert.Equal(t, "only@example.com", email)
	assert.Empty(t, phone)

	email, phone = extractContact("deliver after 6pm")
	assert.Empty(t, email)
	assert.Empty(t, phone)
}

func TestEmailsMatchCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.True(t, emailsMatch("  Rafi@Example.COM ", "rafi@example.com"))
	assert.False(t, emailsMatch("other@example.com", "rafi@example.com"))
	assert.False(t, emailsMatch("", "rafi@example.com"))
	assert.False(t, emailsMatch("rafi@example.com", ""))
}

func TestPhonesMatchAcrossRepresentations(t *testing.T) {
	forms := []string{"+8801712345678", "8801712345678", "01712345678", "017-1234-5678"}
	for _, a := range forms {
		for _, b := range forms {
			assert.True(t, phonesMatch(a, b), "%s vs %s", a, b)
		}
	}
	assert.False(t, phonesMatch("01712345678", "01812345678"))
	assert.False(t, phonesMatch("12345", "12345"), "fewer than 10 digits never matches")
}

func TestVerifyContact(t *testing.T) {
	notes := "Name: Rafi | Email: rafi@example.com | Phone: +8801712345678"

	assert.True(t, verifyContact(notes, "RAFI@example.com", ""))
	assert.True(t, verifyContact(notes, "", "01712345678"))
	// either credential matching suffices
	assert.True(t, verifyContact(notes, "wrong@example.com", "01712345678"))
	assert.False(t, verifyContact(notes, "wrong@example.com", "01912345678"))
	// nothing extracted to compare against
	assert.False(t, verifyContact("deliver after 6pm", "rafi@example.com", "01712345678"))
}
