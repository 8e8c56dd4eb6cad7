package charts

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Outcomes a verified entry can be tagged with.
const (
	OutcomeWin  = "Win"
	OutcomeLose = "Lose"
)

const defaultTitle = "チャート画像"

var (
	fileRe  = regexp.MustCompile(`^\[(\d{4}_\d{2}_\d{2})\]\[(\d{4})\](?:\[(Win|Lose)\])?\.png$`)
	titleRe = regexp.MustCompile(`\[(\d{4})_(\d{2})_(\d{2})\]\[(\d{4})\]`)
	dateRe  = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}$`)
	slotRe  = regexp.MustCompile(`^\d{4}$`)
)

// Image is one chart thumbnail on disk.
type Image struct {
	Date    string `json:"date"`
	Slot    string `json:"slot"`
	Outcome string `json:"outcome,omitempty"`
	File    string `json:"file"`
	Frame   string `json:"frame,omitempty"`
	Title   string `json:"title"`
}

// FileName builds "[YYYY_MM_DD][HHMM].png", with an optional outcome tag.
func FileName(date, slot, outcome string) string {
	if outcome != "" {
		return fmt.Sprintf("[%s][%s][%s].png", date, slot, outcome)
	}
	return fmt.Sprintf("[%s][%s].png", date, slot)
}

// ParseFileName is the inverse of FileName.
func ParseFileName(name string) (Image, bool) {
	m := fileRe.FindStringSubmatch(path.Base(name))
	if m == nil {
		return Image{}, false
	}
	file := path.Base(name)
	return Image{
		Date:    m[1],
		Slot:    m[2],
		Outcome: m[3],
		File:    file,
		Frame:   FrameClass(file),
		Title:   ImageTitle(file),
	}, true
}

// ValidDate reports whether date looks like YYYY_MM_DD.
func ValidDate(date string) bool { return dateRe.MatchString(date) }

// ValidSlot reports whether slot looks like HHMM.
func ValidSlot(slot string) bool { return slotRe.MatchString(slot) }

// ValidOutcome accepts Win, Lose, or empty to clear.
func ValidOutcome(outcome string) bool {
	return outcome == "" || outcome == OutcomeWin || outcome == OutcomeLose
}

// FormatDate turns 2025_08_28 into 8月28日.
func FormatDate(date string) string {
	parts := strings.Split(date, "_")
	if len(parts) != 3 {
		return date
	}
	month, err1 := strconv.Atoi(parts[1])
	day, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return date
	}
	return fmt.Sprintf("%d月%d日", month, day)
}

// SlotFile turns "0:00" into "0000".
func SlotFile(slot string) string {
	hour, _, _ := strings.Cut(slot, ":")
	if len(hour) < 2 {
		hour = strings.Repeat("0", 2-len(hour)) + hour
	}
	return hour + "00"
}

// ImageTitle is the modal heading for a thumbnail file name.
func ImageTitle(name string) string {
	m := titleRe.FindStringSubmatch(path.Base(name))
	if m == nil {
		return defaultTitle
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4][:2])
	return fmt.Sprintf("%d月%d日, %d:00 のエントリーしてから240時間分のチャート画像", month, day, hour)
}

// FrameClass returns the CSS frame for tagged thumbnails.
func FrameClass(name string) string {
	switch {
	case strings.Contains(name, "[Win]"):
		return "win-frame"
	case strings.Contains(name, "[Lose]"):
		return "lose-frame"
	}
	return ""
}
