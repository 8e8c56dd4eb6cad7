package signals

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingForexData is returned when a feed document has no forexData object.
var ErrMissingForexData = errors.New("feed document missing forexData")

// Number accepts JSON numbers and numeric strings. Exporters are not
// consistent about quoting.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*n = Number(f)
	return nil
}

// PairRecord is one currency pair entry of the feed as exported by the terminal.
type PairRecord struct {
	CurrencyStrength string `json:"Currency_Strength_Rank_all_pair"`
	CCIStrength      string `json:"CCI_Currency_Strength_Rank_all_pair"`
	BBPercent        string `json:"BB_percent_ranking"`
	RSIBreakout      Number `json:"RSI_breakout"`
	OverallRanking   string `json:"Overall_Ranking"`
	Confidence       Number `json:"Confidence"`
	Signal           string `json:"Signal,omitempty"`
	Trigger          string `json:"TRIGGER,omitempty"`
	TriggerReason    string `json:"TRIGGER_REASON,omitempty"`
}

// Pair couples a pair name with its record.
type Pair struct {
	Name   string
	Record PairRecord
}

// Feed is a decoded signal document. Pairs keep document order.
type Feed struct {
	Pairs []Pair
	// Raw is the compacted forexData object, used for change detection.
	Raw json.RawMessage
}

// DecodeFeed parses a {"forexData": {...}} document.
func DecodeFeed(data []byte) (Feed, error) {
	var doc struct {
		ForexData json.RawMessage `json:"forexData"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Feed{}, fmt.Errorf("decode feed: %w", err)
	}
	if len(doc.ForexData) == 0 || bytes.Equal(bytes.TrimSpace(doc.ForexData), []byte("null")) {
		return Feed{}, ErrMissingForexData
	}

	pairs, err := decodeOrdered(doc.ForexData)
	if err != nil {
		return Feed{}, err
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, doc.ForexData); err != nil {
		return Feed{}, fmt.Errorf("compact forexData: %w", err)
	}
	return Feed{Pairs: pairs, Raw: buf.Bytes()}, nil
}

// Equal reports whether two feeds carry the same serialized forexData.
func (f Feed) Equal(other Feed) bool {
	return bytes.Equal(f.Raw, other.Raw)
}

func decodeOrdered(raw json.RawMessage) ([]Pair, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode forexData: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode forexData: expected object, got %v", tok)
	}

	var pairs []Pair
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode forexData: %w", err)
		}
		name, _ := tok.(string)
		var rec PairRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode forexData[%s]: %w", name, err)
		}
		// A repeated key keeps its first position and takes the last value.
		if i, ok := index[name]; ok {
			pairs[i].Record = rec
			continue
		}
		index[name] = len(pairs)
		pairs = append(pairs, Pair{Name: name, Record: rec})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode forexData: %w", err)
	}
	return pairs, nil
}
