package app

import (
	"strings"

	"mocktest-service/internal/domain"
)

// GradeOutcome is the grading verdict for a single question.
type GradeOutcome struct {
	Answered bool
	Correct  bool
	Marks    float64
}

// GradeAnswer grades one raw answer against one question. It is a pure
// function: unanswered values short-circuit to zero marks and are never
// penalized; multiple-select requires set equality with the correct option
// set; every other type requires exact equality with the single correct
// value. Incorrect answers earn minus negativeMarking.
func GradeAnswer(question domain.Question, answer domain.Answer, defaultMarks, negativeMarking float64) GradeOutcome {
	if !answer.Answered() {
		return GradeOutcome{}
	}

	correct := isCorrect(question, answer)
	if correct {
		return GradeOutcome{Answered: true, Correct: true, Marks: questionMarks(question, defaultMarks)}
	}
	return GradeOutcome{Answered: true, Correct: false, Marks: -negativeMarking}
}

func isCorrect(question domain.Question, answer domain.Answer) bool {
	correctValues := question.CorrectValues()
	if len(correctValues) == 0 {
		return false
	}

	if question.Type == domain.QuestionMultipleSelect {
		return equalSets(answer.Values(), correctValues)
	}

	// Single-valued types: a list submission can only match when it holds
	// exactly the one correct value.
	submitted := answer.Values()
	if len(submitted) != 1 {
		return false
	}
	return submitted[0] == correctValues[0]
}

// equalSets compares two value sets ignoring order; no partial credit.
func equalSets(submitted, correct []string) bool {
	if len(submitted) != len(correct) {
		return false
	}
	set := make(map[string]struct{}, len(correct))
	for _, v := range correct {
		set[v] = struct{}{}
	}
	for _, v := range submitted {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

func questionMarks(question domain.Question, defaultMarks float64) float64 {
	if question.Marks > 0 {
		return question.Marks
	}
	return defaultMarks
}

// bucketKey maps a classification value to its breakdown bucket, defaulting
// to "General" when the classification is missing.
func bucketKey(value string) string {
	if strings.TrimSpace(value) == "" {
		return "General"
	}
	return value
}
