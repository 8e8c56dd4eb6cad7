package signals

import (
	"fmt"
	"time"
)

// Summary is the banner above the table: the single highest confidence pair.
type Summary struct {
	Pair       string `json:"pair"`
	Signal     Signal `json:"signal"`
	Direction  string `json:"direction"`
	TrendClass string `json:"trend_class"`
	Confidence int    `json:"confidence"`
	Hour       string `json:"hour"`
}

// Summarize picks the first row with the highest confidence. rows should be
// in document order, not table order.
func Summarize(rows []DisplayRow, at time.Time) (Summary, bool) {
	if len(rows) == 0 {
		return Summary{}, false
	}
	top := rows[0]
	for _, r := range rows[1:] {
		if r.Confidence > top.Confidence {
			top = r
		}
	}
	return Summary{
		Pair:       top.Pair,
		Signal:     top.Signal,
		Direction:  top.Signal.Label(),
		TrendClass: top.Signal.TrendClass(),
		Confidence: top.Confidence,
		Hour:       fmt.Sprintf("%02d:00", at.Hour()),
	}, true
}

func (s Summary) Title() string {
	return s.Hour + "の最有力分析結果（仮説）"
}

func (s Summary) Footer() string {
	return fmt.Sprintf("最終更新: %s | 期待度: %d%%", s.Hour, s.Confidence)
}
