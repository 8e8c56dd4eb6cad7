package signals

import "strconv"

// Mode describes the pair universe a feed was computed over. It decides
// which rank ratios count as extreme.
type Mode struct {
	Source string
	Pairs  int
	// Extreme is the largest count in a rank string for this universe.
	Extreme int
}

var (
	Mode10 = Mode{Source: "10pair", Pairs: 10, Extreme: 5}
	Mode28 = Mode{Source: "28pair", Pairs: 28, Extreme: 8}
)

// Sources lists the feed sources in toggle order.
var Sources = []string{Mode10.Source, Mode28.Source}

// DefaultSource is shown when a request does not pick one.
const DefaultSource = "28pair"

// ModeFor returns the mode of a source name.
func ModeFor(source string) (Mode, bool) {
	switch source {
	case Mode10.Source:
		return Mode10, true
	case Mode28.Source:
		return Mode28, true
	}
	return Mode{}, false
}

// IsExtremeRank reports whether v is the most lopsided ratio of the mode.
func (m Mode) IsExtremeRank(v string) bool {
	if m.Extreme <= 0 {
		return false
	}
	top := strconv.Itoa(m.Extreme)
	return v == "1/"+top || v == top+"/1"
}

// IsExtremeOscillator flags RSI style readings at or beyond 70/30.
func IsExtremeOscillator(x float64) bool {
	return x >= 70 || x <= 30
}
