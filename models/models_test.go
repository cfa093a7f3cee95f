package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuizType(t *testing.T) {
	tests := []struct {
		input   string
		want    QuizType
		wantErr bool
	}{
		{input: "kotlin", want: QuizKotlin},
		{input: " Compose ", want: QuizCompose},
		{input: "MIXED", want: QuizMixed},
		{input: "", wantErr: true},
		{input: "swift", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQuizType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUiStateCloneSharesNothing(t *testing.T) {
	s := NewUiState(Snapshot{BestScores: map[QuizType]int{QuizKotlin: 2}, History: []string{"a"}})
	s.Answers[0] = 1

	c := s.Clone()
	c.Answers[0] = 2
	c.BestScores[QuizKotlin] = 3
	c.History[0] = "b"

	assert.Equal(t, 1, s.Answers[0])
	assert.Equal(t, 2, s.BestScores[QuizKotlin])
	assert.Equal(t, "a", s.History[0])
}

func TestNewUiStateDefaults(t *testing.T) {
	s := NewUiState(Snapshot{})
	assert.Equal(t, ScreenMenu, s.Screen)
	assert.Empty(t, s.Answers)
	assert.NotNil(t, s.History)
	assert.Equal(t, 0, s.BestScores[QuizMixed])
}

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot{BestScores: map[QuizType]int{QuizKotlin: 1}, History: []string{"x"}}
	b := Snapshot{BestScores: map[QuizType]int{QuizKotlin: 1, QuizCompose: 0}, History: []string{"x"}}
	assert.True(t, a.Equal(b))

	b.LargeText = true
	assert.False(t, a.Equal(b))

	c := Snapshot{BestScores: map[QuizType]int{QuizKotlin: 2}, History: []string{"x"}}
	assert.False(t, a.Equal(c))
}
