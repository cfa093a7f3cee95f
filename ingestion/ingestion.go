package ingestion

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"quiz-server/exam"
	"quiz-server/models"
)

// LoadBanks reads <quiz_type>.yaml files from dir and returns base with those
// quiz types replaced. Types without a file keep the questions of base.
// An empty dir returns base unchanged.
func LoadBanks(dir string, base exam.Bank) (exam.Bank, error) {
	bank := make(exam.Bank, len(base))
	for t, qs := range base {
		bank[t] = qs
	}
	if dir == "" {
		return bank, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open bank directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bank path %s is not a directory", dir)
	}

	for _, t := range models.QuizTypes {
		path := filepath.Join(dir, string(t)+".yaml")
		questions, err := loadBankFile(path, t)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		bank[t] = questions
		log.Printf("Loaded %d questions for %s from %s", len(questions), t.Title(), path)
	}

	if err := bank.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question bank: %w", err)
	}
	return bank, nil
}

// loadBankFile parses one bank file and derives each question's correct index.
func loadBankFile(path string, want models.QuizType) ([]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file models.BankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if file.QuizType != "" {
		t, err := models.ParseQuizType(file.QuizType)
		if err != nil || t != want {
			return nil, fmt.Errorf("%s: quiz_type %q does not match file name", path, file.QuizType)
		}
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("%s: no questions", path)
	}

	for i := range file.Questions {
		q := &file.Questions[i]
		if q.ID == 0 {
			q.ID = i + 1
		}
		q.CorrectIndex = -1
		for j, o := range q.Options {
			if o.IsCorrect {
				q.CorrectIndex = j
				break
			}
		}
		if err := exam.ValidateQuestion(*q); err != nil {
			return nil, fmt.Errorf("%s: question %d: %w", path, i+1, err)
		}
	}
	return file.Questions, nil
}
