package signals

import (
	"math"
	"sort"
)

// RankExtremes flags the rank columns that sit at the mode's extreme ratio.
type RankExtremes struct {
	CurrencyStrength bool `json:"currency_strength"`
	CCIStrength      bool `json:"cci_strength"`
	BBPercent        bool `json:"bb_percent"`
	OverallRanking   bool `json:"overall_ranking"`
}

// DisplayRow is one table row. Rows are rebuilt on every load.
type DisplayRow struct {
	Pair             string  `json:"pair"`
	CurrencyStrength string  `json:"currency_strength"`
	CCIStrength      string  `json:"cci_strength"`
	BBPercent        string  `json:"bb_percent"`
	RSIBreakout      float64 `json:"rsi_breakout"`
	OverallRanking   string  `json:"overall_ranking"`
	Confidence       int     `json:"confidence"`
	Signal           Signal  `json:"signal"`
	Trigger          string  `json:"trigger"`
	TriggerReason    string  `json:"trigger_reason"`

	Direction    string       `json:"direction"`
	EntryClass   string       `json:"entry_class"`
	Extremes     RankExtremes `json:"extremes"`
	RSIExtreme   bool         `json:"rsi_extreme"`
	Medal        string       `json:"medal,omitempty"`
	Top3         bool         `json:"top3"`
	TriggerText  string       `json:"trigger_text"`
	TriggerClass string       `json:"trigger_class"`
}

// Transform converts feed records into rows in document order. Derived
// presentation fields are left empty; see Annotate.
func Transform(feed Feed) []DisplayRow {
	rows := make([]DisplayRow, 0, len(feed.Pairs))
	for _, p := range feed.Pairs {
		rec := p.Record
		trigger := rec.Trigger
		if trigger == "" {
			trigger = TriggerOff
		}
		reason := rec.TriggerReason
		if reason == "" {
			reason = defaultTriggerReason
		}
		rows = append(rows, DisplayRow{
			Pair:             p.Name,
			CurrencyStrength: rec.CurrencyStrength,
			CCIStrength:      rec.CCIStrength,
			BBPercent:        rec.BBPercent,
			RSIBreakout:      float64(rec.RSIBreakout),
			OverallRanking:   rec.OverallRanking,
			Confidence:       int(math.Round(float64(rec.Confidence))),
			Signal:           ResolveSignal(rec),
			Trigger:          trigger,
			TriggerReason:    reason,
		})
	}
	return rows
}

// Annotate returns a copy of rows with extremity, medal and label fields set.
func Annotate(rows []DisplayRow, mode Mode) []DisplayRow {
	confidences := make([]int, len(rows))
	for i, r := range rows {
		confidences[i] = r.Confidence
	}
	medals := TopMedals(confidences)

	out := make([]DisplayRow, len(rows))
	for i, r := range rows {
		r.Direction = r.Signal.Label()
		r.EntryClass = r.Signal.EntryClass()
		r.Extremes = RankExtremes{
			CurrencyStrength: mode.IsExtremeRank(r.CurrencyStrength),
			CCIStrength:      mode.IsExtremeRank(r.CCIStrength),
			BBPercent:        mode.IsExtremeRank(r.BBPercent),
			OverallRanking:   mode.IsExtremeRank(r.OverallRanking),
		}
		r.RSIExtreme = IsExtremeOscillator(r.RSIBreakout)
		r.Medal = medals.For(r.Confidence, r.Signal)
		r.Top3 = medals.Top3(r.Confidence) && !r.Signal.Neutral()
		r.TriggerText = FormatTrigger(r.Trigger, r.TriggerReason)
		r.TriggerClass = TriggerClass(r.Trigger)
		out[i] = r
	}
	return out
}

// Less orders rows by direction priority, confidence descending, then
// Sell before Buy before neutral.
func Less(a, b DisplayRow) bool {
	if pa, pb := a.Signal.Priority(), b.Signal.Priority(); pa != pb {
		return pa < pb
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.Signal.TieBreak() < b.Signal.TieBreak()
}

// SortRows sorts in place. Rows equal on every key keep their input order.
func SortRows(rows []DisplayRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(rows[i], rows[j])
	})
}

// BuildRows runs transform, annotation and sort for one feed.
func BuildRows(feed Feed, mode Mode) []DisplayRow {
	rows := Annotate(Transform(feed), mode)
	SortRows(rows)
	return rows
}
