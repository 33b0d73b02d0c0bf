package booking

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

const codePrefix = "LUX-"

// DeriveTicketCode builds the deterministic ticket code from the user, bus and
// route identity plus the departure instant. When user or bus identity is
// missing it falls back to a random code of the same shape.
func DeriveTicketCode(userName, busName, origin, destination string, departure time.Time, hasAddons bool) string {
	if strings.TrimSpace(userName) == "" || strings.TrimSpace(busName) == "" ||
		origin == "" || destination == "" {
		return RandomTicketCode(hasAddons)
	}

	day, month, hour := 1, 1, 0
	if !departure.IsZero() {
		day = departure.Day()
		month = int(departure.Month())
		hour = departure.Hour()
	}

	var b strings.Builder
	b.WriteString(codePrefix)
	b.WriteString(initials(userName, 'U'))
	b.WriteString(initials(busName, 'B'))
	b.WriteByte(upperByte(firstRune(origin), 'X'))
	b.WriteByte(upperByte(firstRune(destination), 'X'))
	fmt.Fprintf(&b, "%02d%02d%02d", day, month, hour)
	b.WriteByte(addonBit(hasAddons))
	return b.String()
}

// RandomTicketCode is the opaque fallback: two random uppercase letters and
// four random digits, plus the addon bit.
func RandomTicketCode(hasAddons bool) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const digits = "0123456789"

	var b strings.Builder
	b.WriteString(codePrefix)
	for i := 0; i < 2; i++ {
		b.WriteByte(letters[rand.Intn(len(letters))])
	}
	for i := 0; i < 4; i++ {
		b.WriteByte(digits[rand.Intn(len(digits))])
	}
	b.WriteByte(addonBit(hasAddons))
	return b.String()
}

// initials takes the first letter of each whitespace-separated token,
// uppercased, truncated or padded to exactly two characters.
func initials(name string, pad byte) string {
	out := make([]byte, 0, 2)
	for _, token := range strings.Fields(name) {
		out = append(out, upperByte(firstRune(token), pad))
		if len(out) == 2 {
			return string(out)
		}
	}
	for len(out) < 2 {
		out = append(out, pad)
	}
	return string(out)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ' '
}

// upperByte folds r to an uppercase ASCII letter. Runes outside A-Z after
// folding (accented letters, digits, punctuation) map to the fallback so the
// code stays within its alphabet.
func upperByte(r rune, fallback byte) byte {
	r = unicode.ToUpper(r)
	if r < 'A' || r > 'Z' {
		return fallback
	}
	return byte(r)
}

func addonBit(hasAddons bool) byte {
	if hasAddons {
		return '1'
	}
	return '0'
}
