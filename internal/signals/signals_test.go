package signals

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"time"
)

const sampleFeed = `{
  "forexData": {
    "USDJPY": {"Currency_Strength_Rank_all_pair": "1/8", "CCI_Currency_Strength_Rank_all_pair": "3/5",
      "BB_percent_ranking": "8/1", "RSI_breakout": 75.5, "Overall_Ranking": "6/2", "Confidence": 80,
      "TRIGGER": "ON", "TRIGGER_REASON": "T_2"},
    "EURUSD": {"Currency_Strength_Rank_all_pair": "2/6", "CCI_Currency_Strength_Rank_all_pair": "4/4",
      "BB_percent_ranking": "5/3", "RSI_breakout": "45", "Overall_Ranking": "2/6", "Confidence": "80"},
    "GBPUSD": {"Currency_Strength_Rank_all_pair": "4/4", "CCI_Currency_Strength_Rank_all_pair": "4/4",
      "BB_percent_ranking": "4/4", "RSI_breakout": 20, "Overall_Ranking": "4/4", "Confidence": 95},
    "AUDUSD": {"Currency_Strength_Rank_all_pair": "5/3", "CCI_Currency_Strength_Rank_all_pair": "5/3",
      "BB_percent_ranking": "5/3", "RSI_breakout": 50, "Overall_Ranking": "5/3", "Confidence": 60, "Signal": "Sell"}
  }
}`

func mustDecode(t *testing.T, doc string) Feed {
	t.Helper()
	feed, err := DecodeFeed([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeFeed() error = %v", err)
	}
	return feed
}

func TestDecodeFeedKeepsDocumentOrder(t *testing.T) {
	feed := mustDecode(t, sampleFeed)

	want := []string{"USDJPY", "EURUSD", "GBPUSD", "AUDUSD"}
	if len(feed.Pairs) != len(want) {
		t.Fatalf("pairs = %d; want %d", len(feed.Pairs), len(want))
	}
	for i, name := range want {
		if feed.Pairs[i].Name != name {
			t.Fatalf("pairs[%d] = %q; want %q", i, feed.Pairs[i].Name, name)
		}
	}
	if got := float64(feed.Pairs[1].Record.RSIBreakout); got != 45 {
		t.Fatalf("quoted RSI = %v; want 45", got)
	}
	if strings.ContainsAny(string(feed.Raw), "\n ") {
		t.Fatalf("raw forexData not compacted: %s", feed.Raw)
	}
}

func TestDecodeFeedDuplicatePairKeepsLastValue(t *testing.T) {
	feed := mustDecode(t, `{"forexData": {
		"EURUSD": {"Overall_Ranking": "2/6", "Confidence": 90},
		"USDJPY": {"Overall_Ranking": "6/2", "Confidence": 70},
		"EURUSD": {"Overall_Ranking": "6/2", "Confidence": 50}
	}}`)

	if len(feed.Pairs) != 2 {
		t.Fatalf("pairs = %d; want 2", len(feed.Pairs))
	}
	got := feed.Pairs[0]
	if got.Name != "EURUSD" || int(got.Record.Confidence) != 50 || got.Record.OverallRanking != "6/2" {
		t.Fatalf("pairs[0] = %+v; want EURUSD with the last value", got)
	}
	if feed.Pairs[1].Name != "USDJPY" {
		t.Fatalf("pairs[1] = %q; want USDJPY", feed.Pairs[1].Name)
	}
}

func TestDecodeFeedMissingForexData(t *testing.T) {
	_, err := DecodeFeed([]byte(`{"other": {}}`))
	if !errors.Is(err, ErrMissingForexData) {
		t.Fatalf("DecodeFeed() error = %v; want ErrMissingForexData", err)
	}
	if _, err := DecodeFeed([]byte(`{"forexData": [1,2]}`)); err == nil {
		t.Fatal("expected error for non-object forexData")
	}
	if _, err := DecodeFeed([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestFeedEqualIgnoresFormatting(t *testing.T) {
	a := mustDecode(t, `{"forexData": {"EURUSD": {"Confidence": 10}}}`)
	b := mustDecode(t, "{\n  \"forexData\": {\n    \"EURUSD\": { \"Confidence\": 10 }\n  }\n}")
	c := mustDecode(t, `{"forexData": {"EURUSD": {"Confidence": 11}}}`)
	if !a.Equal(b) {
		t.Fatal("feeds differing only in whitespace should be equal")
	}
	if a.Equal(c) {
		t.Fatal("feeds with different values should differ")
	}
}

func TestResolveSignal(t *testing.T) {
	tests := []struct {
		name string
		rec  PairRecord
		want Signal
	}{
		{"left greater", PairRecord{OverallRanking: "6/2"}, Buy},
		{"right greater", PairRecord{OverallRanking: "2/6"}, Sell},
		{"equal", PairRecord{OverallRanking: "4/4"}, Hold},
		{"unparsable", PairRecord{OverallRanking: "n/a"}, Hold},
		{"explicit wins", PairRecord{OverallRanking: "6/2", Signal: "Sell"}, Sell},
		{"explicit hold", PairRecord{OverallRanking: "6/2", Signal: "Hold"}, Hold},
		{"unknown explicit falls back", PairRecord{OverallRanking: "2/6", Signal: "Stay"}, Sell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveSignal(tt.rec); got != tt.want {
				t.Errorf("ResolveSignal() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtremeRankDependsOnMode(t *testing.T) {
	if !Mode28.IsExtremeRank("1/8") || !Mode28.IsExtremeRank("8/1") {
		t.Fatal("1/8 and 8/1 should be extreme in 28pair mode")
	}
	if Mode10.IsExtremeRank("1/8") {
		t.Fatal("1/8 should not be extreme in 10pair mode")
	}
	if !Mode10.IsExtremeRank("5/1") || !Mode10.IsExtremeRank("1/5") {
		t.Fatal("1/5 and 5/1 should be extreme in 10pair mode")
	}
	if (Mode{}).IsExtremeRank("1/0") {
		t.Fatal("zero mode should never flag a rank")
	}
}

func TestIsExtremeOscillator(t *testing.T) {
	for _, x := range []float64{70, 85.2, 30, 0} {
		if !IsExtremeOscillator(x) {
			t.Errorf("IsExtremeOscillator(%v) = false; want true", x)
		}
	}
	for _, x := range []float64{30.1, 50, 69.9} {
		if IsExtremeOscillator(x) {
			t.Errorf("IsExtremeOscillator(%v) = true; want false", x)
		}
	}
}

func TestMedalsForDistinctTopThree(t *testing.T) {
	confidences := []int{95, 95, 80, 80, 80, 60}
	sigs := []Signal{Buy, Sell, Buy, Hold, Sell, Buy}
	m := TopMedals(confidences)

	want := []string{Gold, Gold, Silver, "", Silver, Bronze}
	for i := range confidences {
		if got := m.For(confidences[i], sigs[i]); got != want[i] {
			t.Errorf("row %d medal = %q; want %q", i, got, want[i])
		}
	}
	if got := m.For(60, Hold); got != "" {
		t.Errorf("neutral 60 medal = %q; want none", got)
	}
}

func TestMedalsFewerThanThreeValues(t *testing.T) {
	m := TopMedals([]int{50, 50})
	if len(m) != 1 || m[50] != Gold {
		t.Fatalf("TopMedals() = %v; want only gold for 50", m)
	}
	if len(TopMedals(nil)) != 0 {
		t.Fatal("empty board should have no medals")
	}
}

func TestSortRowsOrdering(t *testing.T) {
	rows := []DisplayRow{
		{Pair: "A", Signal: Hold, Confidence: 99},
		{Pair: "B", Signal: Buy, Confidence: 70},
		{Pair: "C", Signal: Sell, Confidence: 70},
		{Pair: "D", Signal: Buy, Confidence: 90},
		{Pair: "E", Signal: Hold, Confidence: 40},
	}
	SortRows(rows)

	want := []string{"D", "C", "B", "A", "E"}
	for i, p := range want {
		if rows[i].Pair != p {
			t.Fatalf("rows[%d] = %s; want %s (order %v)", i, rows[i].Pair, p, pairs(rows))
		}
	}
	for i := 0; i+1 < len(rows); i++ {
		if Less(rows[i+1], rows[i]) {
			t.Fatalf("rows %d and %d out of order", i, i+1)
		}
	}
}

func TestSortRowsInvariantOnShuffledRows(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	sigs := []Signal{Buy, Sell, Hold, ""}
	confs := []int{50, 70, 70, 90}

	for round := 0; round < 200; round++ {
		n := rng.IntN(15)
		rows := make([]DisplayRow, n)
		pos := make(map[string]int, n)
		for i := range rows {
			name := "P" + strconv.Itoa(i)
			rows[i] = DisplayRow{Pair: name, Signal: sigs[rng.IntN(len(sigs))], Confidence: confs[rng.IntN(len(confs))]}
			pos[name] = i
		}
		SortRows(rows)

		for i := 0; i+1 < len(rows); i++ {
			a, b := rows[i], rows[i+1]
			if Less(b, a) {
				t.Fatalf("round %d: %+v sorted before %+v", round, a, b)
			}
			if !Less(a, b) && pos[a.Pair] > pos[b.Pair] {
				t.Fatalf("round %d: equal rows %s and %s swapped", round, a.Pair, b.Pair)
			}
		}
	}
}

func TestSortRowsIsStable(t *testing.T) {
	rows := []DisplayRow{
		{Pair: "first", Signal: Buy, Confidence: 80},
		{Pair: "x", Signal: Sell, Confidence: 90},
		{Pair: "second", Signal: Buy, Confidence: 80},
		{Pair: "third", Signal: Buy, Confidence: 80},
	}
	SortRows(rows)

	got := pairs(rows)
	want := []string{"x", "first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v; want %v", got, want)
		}
	}
}

func TestBuildRowsAnnotates(t *testing.T) {
	feed := mustDecode(t, sampleFeed)
	rows := BuildRows(feed, Mode28)

	// Directional rows first by confidence, EURUSD (Sell) before USDJPY (Buy) at 80.
	want := []string{"EURUSD", "USDJPY", "AUDUSD", "GBPUSD"}
	if got := pairs(rows); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v; want %v", got, want)
	}

	byPair := map[string]DisplayRow{}
	for _, r := range rows {
		byPair[r.Pair] = r
	}

	usdjpy := byPair["USDJPY"]
	if !usdjpy.Extremes.CurrencyStrength || !usdjpy.Extremes.BBPercent || usdjpy.Extremes.CCIStrength {
		t.Errorf("USDJPY extremes = %+v", usdjpy.Extremes)
	}
	if !usdjpy.RSIExtreme {
		t.Error("USDJPY RSI 75.5 should be extreme")
	}
	if usdjpy.Medal != Silver || !usdjpy.Top3 {
		t.Errorf("USDJPY medal = %q top3=%v; want silver", usdjpy.Medal, usdjpy.Top3)
	}
	if usdjpy.TriggerText != "ON | RSI極値" || usdjpy.TriggerClass != "trigger-on" {
		t.Errorf("USDJPY trigger = %q/%q", usdjpy.TriggerText, usdjpy.TriggerClass)
	}

	gbpusd := byPair["GBPUSD"]
	if gbpusd.Medal != "" || gbpusd.Top3 {
		t.Errorf("neutral GBPUSD got medal %q top3=%v", gbpusd.Medal, gbpusd.Top3)
	}
	if gbpusd.Direction != LabelNeutral || gbpusd.EntryClass != "entry-stay" {
		t.Errorf("GBPUSD direction = %q/%q", gbpusd.Direction, gbpusd.EntryClass)
	}

	eurusd := byPair["EURUSD"]
	if eurusd.Trigger != TriggerOff || eurusd.TriggerReason != "NONE" || eurusd.TriggerText != "OFF" {
		t.Errorf("EURUSD trigger defaults = %q/%q/%q", eurusd.Trigger, eurusd.TriggerReason, eurusd.TriggerText)
	}

	if byPair["AUDUSD"].Signal != Sell || byPair["AUDUSD"].Medal != Bronze {
		t.Errorf("AUDUSD = %q %q; want explicit Sell with bronze", byPair["AUDUSD"].Signal, byPair["AUDUSD"].Medal)
	}
}

func TestFormatTrigger(t *testing.T) {
	tests := []struct {
		trigger, reason, want string
	}{
		{"OFF", "T_1", "OFF"},
		{"ON", "T_1", "ON | EMA戻り"},
		{"ON", "T_3", "ON | RSI戻り"},
		{"ON", "None", "ON | なし"},
		{"ON", "T_9", "ON | T_9"},
		{"ARMED", "T_1", "ARMED"},
	}
	for _, tt := range tests {
		if got := FormatTrigger(tt.trigger, tt.reason); got != tt.want {
			t.Errorf("FormatTrigger(%q, %q) = %q; want %q", tt.trigger, tt.reason, got, tt.want)
		}
	}
}

func TestSummarizePicksFirstHighestInDocumentOrder(t *testing.T) {
	rows := Transform(mustDecode(t, sampleFeed))
	at := time.Date(2025, 9, 10, 9, 42, 0, 0, time.UTC)

	s, ok := Summarize(rows, at)
	if !ok {
		t.Fatal("Summarize() ok = false")
	}
	if s.Pair != "GBPUSD" || s.Confidence != 95 || s.TrendClass != "neutral" {
		t.Fatalf("summary = %+v", s)
	}
	if got, want := s.Title(), "09:00の最有力分析結果（仮説）"; got != want {
		t.Errorf("Title() = %q; want %q", got, want)
	}
	if got, want := s.Footer(), "最終更新: 09:00 | 期待度: 95%"; got != want {
		t.Errorf("Footer() = %q; want %q", got, want)
	}

	if _, ok := Summarize(nil, at); ok {
		t.Fatal("Summarize(nil) ok = true")
	}
}

func pairs(rows []DisplayRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Pair
	}
	return out
}
