package utilities

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 1, 3, 10, 30, 0, 0, time.UTC)
	n := NewOrderNumber(now)
	require.Regexp(t, regexp.MustCompile(`^ORD-20260103-[A-Z2-9]{8}$`), n)
}

func TestNewOrderNumberUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewOrderNumber(now)
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}

func TestNewKSUIDUnique(t *testing.T) {
	a := NewKSUID()
	b := NewKSUID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 27)
}

func TestNewSnowflakeIDWithNode(t *testing.T) {
	id := NewSnowflakeIDWithNode(3)
	assert.NotEmpty(t, id)
}
