package yamlbank

import (
	"fmt"
	"os"

	"github.com/ShaikTechV/interview-quiz-platform/internal/domain"
	"gopkg.in/yaml.v3"
)

// Load reads the versioned question-bank asset from path and validates it.
// Validation failures are fatal to the caller: a malformed bank must never
// be served.
func Load(path string) (domain.QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("%w: %v", domain.ErrBankNotFound, err)
	}
	return Parse(data)
}

// Parse decodes and validates bank YAML.
func Parse(data []byte) (domain.QuestionBank, error) {
	var bank domain.QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("decode question bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return domain.QuestionBank{}, err
	}
	return bank, nil
}
