package signals

import (
	"strconv"
	"strings"
)

// Signal is the resolved trade direction of a pair.
type Signal string

const (
	Buy  Signal = "Buy"
	Sell Signal = "Sell"
	Hold Signal = "Hold"
)

// Direction labels shown in the table and summary banner.
const (
	LabelUp      = "上方向傾向"
	LabelDown    = "下方向傾向"
	LabelNeutral = "中立傾向"
)

// Neutral reports whether the signal carries no direction.
func (s Signal) Neutral() bool {
	return s != Buy && s != Sell
}

// Priority is the first sort key: directional rows before neutral ones.
func (s Signal) Priority() int {
	if s.Neutral() {
		return 2
	}
	return 1
}

// TieBreak is the last sort key: Sell, then Buy, then neutral.
func (s Signal) TieBreak() int {
	switch s {
	case Sell:
		return 1
	case Buy:
		return 2
	default:
		return 3
	}
}

func (s Signal) Label() string {
	switch s {
	case Buy:
		return LabelUp
	case Sell:
		return LabelDown
	default:
		return LabelNeutral
	}
}

// EntryClass is the CSS class of the direction cell.
func (s Signal) EntryClass() string {
	switch s {
	case Buy:
		return "entry-buy"
	case Sell:
		return "entry-sell"
	default:
		return "entry-stay"
	}
}

// TrendClass is the CSS modifier of the summary banner.
func (s Signal) TrendClass() string {
	switch s {
	case Buy:
		return "up"
	case Sell:
		return "down"
	default:
		return "neutral"
	}
}

// ParseRank splits an "a/b" rank string.
func ParseRank(v string) (left, right int, ok bool) {
	l, r, found := strings.Cut(strings.TrimSpace(v), "/")
	if !found {
		return 0, 0, false
	}
	left, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil {
		return 0, 0, false
	}
	right, err = strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return 0, 0, false
	}
	return left, right, true
}

// SignalFromRanking derives a direction from the overall ranking counts.
func SignalFromRanking(ranking string) Signal {
	left, right, ok := ParseRank(ranking)
	switch {
	case !ok:
		return Hold
	case left > right:
		return Buy
	case left < right:
		return Sell
	default:
		return Hold
	}
}

// ResolveSignal returns the explicit signal when it is one of Buy, Sell or
// Hold and falls back to the overall ranking otherwise.
func ResolveSignal(rec PairRecord) Signal {
	switch Signal(strings.TrimSpace(rec.Signal)) {
	case Buy:
		return Buy
	case Sell:
		return Sell
	case Hold:
		return Hold
	}
	return SignalFromRanking(rec.OverallRanking)
}
