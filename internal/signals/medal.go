package signals

import "sort"

// Medal glyphs in rank order.
const (
	Gold   = "🥇"
	Silver = "🥈"
	Bronze = "🥉"
)

var medalGlyphs = [...]string{Gold, Silver, Bronze}

// Medals maps the three highest distinct confidence values to a glyph.
type Medals map[int]string

// TopMedals builds the medal table from every confidence value on the board.
func TopMedals(confidences []int) Medals {
	seen := make(map[int]struct{}, len(confidences))
	distinct := make([]int, 0, len(confidences))
	for _, c := range confidences {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(distinct)))

	m := make(Medals, len(medalGlyphs))
	for i, c := range distinct {
		if i >= len(medalGlyphs) {
			break
		}
		m[c] = medalGlyphs[i]
	}
	return m
}

// Top3 reports whether confidence is one of the medal values.
func (m Medals) Top3(confidence int) bool {
	_, ok := m[confidence]
	return ok
}

// For returns the glyph a row earns. Neutral rows never earn one.
func (m Medals) For(confidence int, sig Signal) string {
	if sig.Neutral() {
		return ""
	}
	return m[confidence]
}
