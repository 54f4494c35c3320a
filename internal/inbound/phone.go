package inbound

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// digitsOnly strips everything but digits from a phone string
func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalPhone normalizes any carrier/bridge phone format to the
// canonical stored form: digits only, country-code prefixed
// (5511999999999). Used at both write and read time so lookups are
// single-key equality.
func CanonicalPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	// Bridge JIDs come as "5511999999999@s.whatsapp.net"
	if at := strings.Index(raw, "@"); at != -1 {
		raw = raw[:at]
	}

	if parsed, err := phonenumbers.Parse(raw, defaultRegion); err == nil && phonenumbers.IsValidNumber(parsed) {
		return strings.TrimPrefix(phonenumbers.Format(parsed, phonenumbers.E164), "+")
	}

	digits := digitsOnly(raw)
	// Brazilian national numbers are 11 digits (DDD + 9-digit mobile);
	// anything longer already carries the country code
	if len(digits) >= 11 {
		return "55" + digits[len(digits)-11:]
	}
	return digits
}

// PhoneVariants returns lookup candidates for rows that predate
// canonical normalization: raw digits, last 11 digits, country-code
// prefixed. First match wins.
func PhoneVariants(raw string) []string {
	digits := digitsOnly(raw)
	variants := []string{CanonicalPhone(raw), digits}
	if len(digits) >= 11 {
		last11 := digits[len(digits)-11:]
		variants = append(variants, last11, "55"+last11)
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
