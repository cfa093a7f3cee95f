package utils

import (
	"fmt"
	"strings"
)

const (
	historyTypeLabel  = "Type:"
	historyScoreLabel = "Score:"
	historyTimeLabel  = "Time:"
	historySeparator  = "|"
)

// ContainsString checks if a string slice contains a specific string.
func ContainsString(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FormatSeconds renders an elapsed-seconds counter, e.g. "42s".
func FormatSeconds(seconds int) string {
	return fmt.Sprintf("%ds", seconds)
}

// ScoreText is the plain-text summary handed to a share sheet.
func ScoreText(score, total int) string {
	return fmt.Sprintf("Score: %d/%d", score, total)
}

// FormatHistoryEntry builds the summary line stored for one completed quiz.
// e.g. "Type: Kotlin | Score: 2/3 | Time: 41s"
func FormatHistoryEntry(title string, score, total, seconds int) string {
	return fmt.Sprintf("%s %s %s %s %d/%d %s %s %s",
		historyTypeLabel, title, historySeparator,
		historyScoreLabel, score, total, historySeparator,
		historyTimeLabel, FormatSeconds(seconds))
}

// HistoryTitle extracts the quiz title from an entry, "Quiz" when it has none.
func HistoryTitle(entry string) string {
	if t := field(entry, historyTypeLabel); t != "" {
		return t
	}
	return "Quiz"
}

// HistorySubtitle joins the score and time fields of an entry with a bullet.
// Entries without either field are returned unchanged.
func HistorySubtitle(entry string) string {
	var parts []string
	if s := field(entry, historyScoreLabel); s != "" {
		parts = append(parts, historyScoreLabel+" "+s)
	}
	if s := field(entry, historyTimeLabel); s != "" {
		parts = append(parts, historyTimeLabel+" "+s)
	}
	if len(parts) == 0 {
		return entry
	}
	return strings.Join(parts, " • ")
}

// field returns the trimmed text between label and the next separator.
func field(entry, label string) string {
	_, rest, ok := strings.Cut(entry, label)
	if !ok {
		return ""
	}
	value, _, _ := strings.Cut(rest, historySeparator)
	return strings.TrimSpace(value)
}
