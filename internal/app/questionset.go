package app

import (
	"math/rand"

	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
)

// sessionQuestions returns a full-length copy of the bank's questions in a
// fresh uniformly random order. The permutation is fixed for the session's
// lifetime; only the order varies between sessions, never the content.
func sessionQuestions(bank domain.QuestionBank) []domain.Question {
	questions := make([]domain.Question, len(bank.Questions))
	copy(questions, bank.Questions)
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions
}
