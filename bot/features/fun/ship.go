package fun

import (
	"strconv"

	"cerealbot/bot/common"
)

// ShipPercentage is (idA + idB) mod 101. It only depends on the two ids, so
// the same pair always gets the same score in either order.
func ShipPercentage(idA, idB string) int {
	a, _ := strconv.ParseUint(idA, 10, 64)
	b, _ := strconv.ParseUint(idB, 10, 64)
	// Snowflakes stay below 2^63, so the sum cannot wrap
	return int((a + b) % 101)
}

// ShipStatus labels a percentage with its band
func ShipStatus(percent int) (label string, color int) {
	switch {
	case percent < 25:
		return "💔 Not meant to be...", common.ColorGray
	case percent < 50:
		return "😐 Could work with effort", common.ColorOrange
	case percent < 75:
		return "💕 Good match!", common.ColorInfo
	default:
		return "💖 Perfect match!", common.ColorDanger
	}
}

// ShipName joins the first half of one name with the second half of the other
func ShipName(first, second string) string {
	a, b := []rune(first), []rune(second)
	return string(a[:len(a)/2]) + string(b[len(b)/2:])
}
