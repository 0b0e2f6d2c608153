package app

import (
	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
)

// scoreSession walks the session's question order and counts answers that
// the matcher accepts. Pure function of its inputs.
func scoreSession(questions []domain.Question, answers map[int]domain.AnswerValue) (score, total int) {
	for _, q := range questions {
		if ans, ok := answers[q.ID]; ok && isCorrect(q, ans) {
			score++
		}
	}
	return score, len(questions)
}
