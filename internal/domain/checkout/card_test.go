package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCardNumber(t *testing.T) {
	assert.Equal(t, "4242 4242 4242 4242", NormalizeCardNumber("4242424242424242"))
	assert.Equal(t, "4242 4242 4242 4242", NormalizeCardNumber("4242-4242-4242-4242"))
	// Excess digits are dropped.
	assert.Equal(t, "4242 4242 4242 4242", NormalizeCardNumber("42424242424242429999"))
	// Partial input groups what it has.
	assert.Equal(t, "4242 42", NormalizeCardNumber("424242"))
	assert.Equal(t, "", NormalizeCardNumber("no digits"))
}

func TestNormalizeExpiry(t *testing.T) {
	assert.Equal(t, "12/26", NormalizeExpiry("1226"))
	assert.Equal(t, "12/26", NormalizeExpiry("12/26"))
	assert.Equal(t, "12/26", NormalizeExpiry("12 - 26 extra"))
	assert.Equal(t, "1", NormalizeExpiry("1"))
	assert.Equal(t, "12/", NormalizeExpiry("12"))
}

func TestNormalizeCVV(t *testing.T) {
	assert.Equal(t, "123", NormalizeCVV("123"))
	assert.Equal(t, "123", NormalizeCVV("1234"))
	assert.Equal(t, "12", NormalizeCVV("1x2"))
}
