package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistoryEntry(t *testing.T) {
	got := FormatHistoryEntry("Kotlin", 2, 3, 41)
	assert.Equal(t, "Type: Kotlin | Score: 2/3 | Time: 41s", got)
}

func TestHistoryTitleAndSubtitle(t *testing.T) {
	tests := []struct {
		name         string
		entry        string
		wantTitle    string
		wantSubtitle string
	}{
		{
			name:         "full entry",
			entry:        "Type: Compose | Score: 1/3 | Time: 9s",
			wantTitle:    "Compose",
			wantSubtitle: "Score: 1/3 • Time: 9s",
		},
		{
			name:         "score only",
			entry:        "Score: 3/3",
			wantTitle:    "Quiz",
			wantSubtitle: "Score: 3/3",
		},
		{
			name:         "free text",
			entry:        "imported attempt",
			wantTitle:    "Quiz",
			wantSubtitle: "imported attempt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantTitle, HistoryTitle(tt.entry))
			assert.Equal(t, tt.wantSubtitle, HistorySubtitle(tt.entry))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-1, 0, 2))
	assert.Equal(t, 2, Clamp(5, 0, 2))
	assert.Equal(t, 1, Clamp(1, 0, 2))
}

func TestScoreText(t *testing.T) {
	assert.Equal(t, "Score: 2/3", ScoreText(2, 3))
}

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"admin", "player"}, "admin"))
	assert.False(t, ContainsString(nil, "admin"))
}
