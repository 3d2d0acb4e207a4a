package order

import (
	"regexp"
	"strings"
)

// Guest order lookup matches a caller-supplied email or phone against the
// contact block embedded in the order's notes field
// ("Name: ... | Email: ... | Phone: ..."). Matching is deliberately
// tolerant of formatting differences but never reveals which part of the
// claim failed.

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[A-Za-z]{2,}$`)
	// Bangladesh mobile numbers: optional +880/880 or a leading 0, operator
	// prefix 1[3-9], then 8 digits.
	bdPhonePattern = regexp.MustCompile(`^(?:\+?880|0)1[3-9]\d{8}$`)

	notesEmailPattern = regexp.MustCompile(`Email:\s*([^|\s]+)`)
	notesPhonePattern = regexp.MustCompile(`Phone:\s*([^|\s]+)`)
)

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidBDPhone reports whether s is a Bangladesh mobile number in any of the
// accepted representations. Spaces and hyphens are stripped before matching.
func ValidBDPhone(s string) bool {
	return bdPhonePattern.MatchString(stripPhoneSeparators(s))
}

func stripPhoneSeparators(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// extractContact pulls the Email: and Phone: tokens out of an order's notes.
// Either may come back empty when the notes carry no such token.
func extractContact(notes string) (email, phone string) {
	if m := notesEmailPattern.FindStringSubmatch(notes); m != nil {
		email = m[1]
	}
	if m := notesPhonePattern.FindStringSubmatch(notes); m != nil {
		phone = m[1]
	}
	return email, phone
}

// emailsMatch compares emails case-insensitively after trimming.
func emailsMatch(provided, extracted string) bool {
	provided = strings.TrimSpace(provided)
	extracted = strings.TrimSpace(extracted)
	if provided == "" || extracted == "" {
		return false
	}
	return strings.EqualFold(provided, extracted)
}

// phonesMatch compares the last 10 digits of both values, which makes
// +8801712345678, 8801712345678 and 01712345678 all equal. This is a known
// lossy approximation carried over from the storefront: numbers from
// different countries sharing a local suffix would collide.
func phonesMatch(provided, extracted string) bool {
	p := lastTenDigits(provided)
	e := lastTenDigits(extracted)
	if len(p) < 10 || len(e) < 10 {
		return false
	}
	return p == e
}

func lastTenDigits(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

// verifyContact decides whether the claimed email/phone authorizes access to
// an order whose notes are given. Either credential matching its extracted
// counterpart suffices, but at least one extracted value must have existed
// to compare against.
func verifyContact(notes, claimedEmail, claimedPhone string) bool {
	storedEmail, storedPhone := extractContact(notes)
	if storedEmail == "" && storedPhone == "" {
		return false
	}
	if claimedEmail != "" && emailsMatch(claimedEmail, storedEmail) {
		return true
	}
	if claimedPhone != "" && phonesMatch(claimedPhone, storedPhone) {
		return true
	}
	return false
}
