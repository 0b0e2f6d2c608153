package app

import (
	"strings"
	"unicode"

	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
)

// isCorrect decides whether a submitted answer satisfies a question. Choice
// questions are type-strict: only an index answer equal to the declared
// correct index matches. Out-of-range or mismatched kinds are simply wrong,
// never an error.
func isCorrect(q domain.Question, ans domain.AnswerValue) bool {
	switch q.Type {
	case domain.MultipleChoice, domain.TrueFalse:
		return ans.Kind == domain.AnswerIndex && ans.Index == q.CorrectIndex
	case domain.TextInput:
		return matchText(q.Accepted, ans)
	}
	return false
}

// matchText compares a free-text answer against every accepted spelling in
// two passes: trimmed and case-folded equality first, then the same with all
// whitespace and percent signs stripped from both sides. "  50 % " therefore
// matches an accepted "50%". No numeric parsing happens here; a bank that
// wants "0.50" to match "0.5" must list both spellings.
func matchText(accepted []string, ans domain.AnswerValue) bool {
	if ans.Kind != domain.AnswerText {
		return false
	}
	folded := foldAnswer(ans.Text)
	if folded == "" {
		return false
	}
	compacted := compactAnswer(folded)
	for _, candidate := range accepted {
		cf := foldAnswer(candidate)
		if folded == cf || compacted == compactAnswer(cf) {
			return true
		}
	}
	return false
}

func foldAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func compactAnswer(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '%' {
			return -1
		}
		return r
	}, s)
}
