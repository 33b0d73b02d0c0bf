package booking

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTicketCode(t *testing.T) {
	departure := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.UTC)

	code := DeriveTicketCode("Jane Doe", "Luxe Prime", "Jakarta", "Bandung", departure, true)
	assert.Equal(t, "LUX-JDLPJB0305081", code)

	again := DeriveTicketCode("Jane Doe", "Luxe Prime", "Jakarta", "Bandung", departure, true)
	assert.Equal(t, code, again, "same inputs must yield the same code")

	noAddon := DeriveTicketCode("Jane Doe", "Luxe Prime", "Jakarta", "Bandung", departure, false)
	assert.Equal(t, "LUX-JDLPJB0305080", noAddon)
}

func TestDeriveTicketCode_Padding(t *testing.T) {
	departure := time.Date(2024, time.December, 25, 14, 0, 0, 0, time.UTC)

	// Single-word names are padded to two characters.
	code := DeriveTicketCode("Madonna", "Express", "Solo", "Malang", departure, false)
	assert.Equal(t, "LUX-MUEBSM2512140", code)

	// Three-word names truncate to the first two initials.
	code = DeriveTicketCode("Mary Jane Watson", "Night Owl Express", "Solo", "Malang", departure, false)
	assert.Equal(t, "LUX-MJNOSM2512140", code)
}

func TestDeriveTicketCode_NonASCIIInitials(t *testing.T) {
	departure := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.UTC)

	// Accented initials fall back to the pad character for names and to X
	// for cities, keeping the code inside its A-Z alphabet.
	code := DeriveTicketCode("Édouard Aronnax", "Luxe Prime", "Évry", "Bandung", departure, false)
	assert.Equal(t, "LUX-UALPXB0305080", code)
}

func TestDeriveTicketCode_ZeroDeparture(t *testing.T) {
	code := DeriveTicketCode("Jane Doe", "Luxe Prime", "Jakarta", "Bandung", time.Time{}, true)
	assert.Equal(t, "LUX-JDLPJB0101001", code)
}

func TestDeriveTicketCode_FallsBackWhenIdentityMissing(t *testing.T) {
	departure := time.Date(2024, time.May, 3, 8, 0, 0, 0, time.UTC)
	shape := regexp.MustCompile(`^LUX-[A-Z]{2}\d{4}[01]$`)

	for name, code := range map[string]string{
		"no user":        DeriveTicketCode("", "Luxe Prime", "Jakarta", "Bandung", departure, true),
		"blank user":     DeriveTicketCode("   ", "Luxe Prime", "Jakarta", "Bandung", departure, true),
		"no bus":         DeriveTicketCode("Jane Doe", "", "Jakarta", "Bandung", departure, true),
		"no origin":      DeriveTicketCode("Jane Doe", "Luxe Prime", "", "Bandung", departure, true),
		"no destination": DeriveTicketCode("Jane Doe", "Luxe Prime", "Jakarta", "", departure, true),
	} {
		require.Regexp(t, shape, code, name)
	}
}

func TestRandomTicketCode_AddonBit(t *testing.T) {
	withAddon := RandomTicketCode(true)
	assert.Equal(t, byte('1'), withAddon[len(withAddon)-1])

	withoutAddon := RandomTicketCode(false)
	assert.Equal(t, byte('0'), withoutAddon[len(withoutAddon)-1])
}
