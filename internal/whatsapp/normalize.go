package whatsapp

import "strings"

// AddressSuffix is the WhatsApp user JID domain appended to every
// normalized number.
const AddressSuffix = "@s.whatsapp.net"

// NormalizeNumber turns a caller-supplied phone number into a transport
// address: non-digits are stripped, a single leading zero is dropped, the
// country code is prepended unless already present, and the JID suffix is
// appended. Total over any input and idempotent on its own output.
func NormalizeNumber(number, countryCode string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := strings.TrimPrefix(b.String(), "0")
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits + AddressSuffix
}
