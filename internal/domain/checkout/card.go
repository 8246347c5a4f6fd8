package checkout

import "strings"

// Card input normalization. These mirror the formatting the storefront
// applies as the customer types: the checkout service runs them again
// server-side so validation never depends on client behaviour.

// NormalizeCardNumber strips everything but digits, caps the value at 16
// digits, and groups them in blocks of four ("4242424242424242" becomes
// "4242 4242 4242 4242").
func NormalizeCardNumber(s string) string {
	digits := digitsOnly(s)
	if len(digits) > 16 {
		digits = digits[:16]
	}

	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// NormalizeExpiry strips non-digits, caps at four digits, and inserts the
// MM/YY slash ("1226" becomes "12/26").
func NormalizeExpiry(s string) string {
	digits := digitsOnly(s)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// NormalizeCVV strips non-digits and caps the value at three digits.
func NormalizeCVV(s string) string {
	digits := digitsOnly(s)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
