package domain

import (
	"errors"
	"testing"
	"time"
)

func TestBankValidation(t *testing.T) {
	valid := QuestionBank{
		Title:   "Sample",
		Version: "1",
		Questions: []Question{
			{ID: 1, Type: MultipleChoice, Prompt: "Pick one", Options: []string{"a", "b"}, CorrectIndex: 0},
			{ID: 2, Type: TrueFalse, Prompt: "True or false?", Options: []string{"True", "False"}, CorrectIndex: 1},
			{ID: 3, Type: TextInput, Prompt: "Type it", Accepted: []string{"7"}},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid bank, got %v", err)
	}

	cases := map[string]QuestionBank{
		"empty bank": {},
		"out of range index": {Questions: []Question{
			{ID: 1, Type: MultipleChoice, Prompt: "p", Options: []string{"a", "b"}, CorrectIndex: 2},
		}},
		"negative index": {Questions: []Question{
			{ID: 1, Type: MultipleChoice, Prompt: "p", Options: []string{"a"}, CorrectIndex: -1},
		}},
		"no accepted answers": {Questions: []Question{
			{ID: 1, Type: TextInput, Prompt: "p"},
		}},
		"duplicate ids": {Questions: []Question{
			{ID: 1, Type: TextInput, Prompt: "p", Accepted: []string{"x"}},
			{ID: 1, Type: TextInput, Prompt: "q", Accepted: []string{"y"}},
		}},
		"true/false needs two options": {Questions: []Question{
			{ID: 1, Type: TrueFalse, Prompt: "p", Options: []string{"True", "False", "N/A"}, CorrectIndex: 0},
		}},
		"unknown type": {Questions: []Question{
			{ID: 1, Type: "essay", Prompt: "p"},
		}},
	}
	for name, bank := range cases {
		if err := bank.Validate(); !errors.Is(err, ErrBankIntegrity) {
			t.Errorf("%s: expected integrity violation, got %v", name, err)
		}
	}
}

func TestSessionCloneDoesNotAlias(t *testing.T) {
	end := time.Now()
	original := Session{
		AccessCode: "ABC123",
		Questions:  []Question{{ID: 1, Prompt: "p"}},
		Answers:    map[int]AnswerValue{1: IndexAnswer(0)},
		EndTime:    &end,
	}
	clone := original.Clone()
	clone.Answers[2] = TextAnswer("x")
	clone.Questions[0].Prompt = "changed"
	*clone.EndTime = end.Add(time.Hour)

	if len(original.Answers) != 1 {
		t.Fatalf("clone aliased answers map")
	}
	if original.Questions[0].Prompt != "p" {
		t.Fatalf("clone aliased questions slice")
	}
	if !original.EndTime.Equal(end) {
		t.Fatalf("clone aliased end time")
	}
}

func TestResultPercentage(t *testing.T) {
	s := Session{Score: 2, TotalQuestions: 3}
	if got := s.Result().Percentage; got != 66.7 {
		t.Fatalf("expected 66.7, got %v", got)
	}
	empty := Session{}
	if got := empty.Result().Percentage; got != 0 {
		t.Fatalf("expected 0 for zero total, got %v", got)
	}
}
