package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 9, 1, 15, 4, 5, 0, time.UTC)

	number, err := NewOrderNumber(now)
	require.NoError(t, err)

	re := regexp.MustCompile(`^ORD-20250901150405-[0-9a-f]{6}$`)
	assert.Regexp(t, re, number)
}

func TestNewOrderNumberUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2025, 9, 1, 20, 0, 0, 0, loc)

	number, err := NewOrderNumber(local)
	require.NoError(t, err)
	assert.Contains(t, number, "ORD-20250901150000-")
}

func TestNewOrderNumberVaries(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number, err := NewOrderNumber(now)
		require.NoError(t, err)
		seen[number] = true
	}
	// 3 random bytes make same-second collisions across 50 draws implausible
	assert.Greater(t, len(seen), 45)
}
