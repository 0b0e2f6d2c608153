package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// AnswerKind tags the variant carried by an AnswerValue.
type AnswerKind int

const (
	// AnswerNone is the zero value: no answer was given.
	AnswerNone AnswerKind = iota
	// AnswerIndex is a 0-based option index for choice questions.
	AnswerIndex
	// AnswerText is a free-text answer.
	AnswerText
)

// AnswerValue is a tagged union over the two answer shapes. Keeping the tag
// explicit lets the matcher be type-strict: the text "2" never satisfies a
// choice question whose correct index is 2.
type AnswerValue struct {
	Kind  AnswerKind
	Index int
	Text  string
}

// IndexAnswer builds a choice-index answer.
func IndexAnswer(i int) AnswerValue {
	return AnswerValue{Kind: AnswerIndex, Index: i}
}

// TextAnswer builds a free-text answer.
func TextAnswer(s string) AnswerValue {
	return AnswerValue{Kind: AnswerText, Text: s}
}

// MarshalJSON encodes index answers as JSON numbers, text answers as JSON
// strings and absent answers as null, matching what quiz clients submit.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerIndex:
		return json.Marshal(v.Index)
	case AnswerText:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON number (integral values become index answers),
// a JSON string (text answer) or null. A non-integral number is kept as its
// literal text: it can never match a choice index, which is the intent.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*v = AnswerValue{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
		return nil
	}
	if i, err := strconv.Atoi(raw); err == nil {
		*v = IndexAnswer(i)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = TextAnswer(raw)
	return nil
}
