package view

import "strconv"

// DefaultCurrencyGlyph prefixes every monetary cell. The platform pays out
// in naira.
const DefaultCurrencyGlyph = "₦"

// Currency renders an amount with thousands grouping and the glyph prefix:
// Currency(15000, "₦") == "₦15,000".
func Currency(amount int64, glyph string) string {
	if glyph == "" {
		glyph = DefaultCurrencyGlyph
	}
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var grouped []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, d)
	}
	if neg {
		return glyph + "-" + string(grouped)
	}
	return glyph + string(grouped)
}
