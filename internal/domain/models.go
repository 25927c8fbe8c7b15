package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// QuestionType tags how a question is answered and graded.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionMultipleSelect QuestionType = "multiple-select"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionText           QuestionType = "text"
)

// Difficulty is the question's difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Option is one selectable answer for an option-based question.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a single test question. Option-based types carry their
// correct answers on the options; true-false and text questions carry a
// canonical CorrectAnswer value instead.
type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []Option     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Difficulty    Difficulty   `json:"difficulty,omitempty"`
	Subject       string       `json:"subject,omitempty"`
	Category      string       `json:"category,omitempty"`
	Level         string       `json:"level,omitempty"`
	Marks         float64      `json:"marks,omitempty"` // falls back to the test default when zero
}

// CorrectValues returns the question's correct answer set. Option-based
// questions collect the texts of options flagged correct; other types
// return the single canonical answer.
func (q Question) CorrectValues() []string {
	switch q.Type {
	case QuestionMultipleChoice, QuestionMultipleSelect:
		values := make([]string, 0, len(q.Options))
		for _, opt := range q.Options {
			if opt.Correct {
				values = append(values, opt.Text)
			}
		}
		return values
	default:
		if q.CorrectAnswer == "" {
			return nil
		}
		return []string{q.CorrectAnswer}
	}
}

// MockTest is a test definition with its questions populated.
type MockTest struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Questions         []Question `json:"questions"`
	NumberOfQuestions int        `json:"numberOfQuestions"`
	MarksPerQuestion  float64    `json:"marksPerQuestion"`
	TotalMarks        float64    `json:"totalMarks"`
	PassingMarks      float64    `json:"passingMarks"`
	NegativeMarking   float64    `json:"negativeMarking"` // marks deducted per wrong answer
	NumberOfAttempts  int        `json:"numberOfAttempts"`
	DurationMinutes   int        `json:"durationMinutes,omitempty"`
}

// marksTolerance absorbs float drift when checking derived totals.
const marksTolerance = 0.01

// Validate checks the definition invariants enforced at create/update time.
// Grading trusts a stored definition and does not re-check these.
func (t MockTest) Validate() error {
	if t.NumberOfQuestions != len(t.Questions) {
		return fmt.Errorf("%w: numberOfQuestions=%d but %d questions attached", ErrInvalidTest, t.NumberOfQuestions, len(t.Questions))
	}
	if expected := float64(t.NumberOfQuestions) * t.MarksPerQuestion; math.Abs(expected-t.TotalMarks) > marksTolerance {
		return fmt.Errorf("%w: totalMarks=%.2f, expected %.2f", ErrInvalidTest, t.TotalMarks, expected)
	}
	if t.PassingMarks > t.TotalMarks {
		return fmt.Errorf("%w: passingMarks=%.2f exceeds totalMarks=%.2f", ErrInvalidTest, t.PassingMarks, t.TotalMarks)
	}
	if t.NegativeMarking < 0 {
		return fmt.Errorf("%w: negativeMarking must be non-negative", ErrInvalidTest)
	}
	if t.NumberOfAttempts < 1 {
		return fmt.Errorf("%w: numberOfAttempts must be at least 1", ErrInvalidTest)
	}
	return nil
}

type answerKind int

const (
	answerNone answerKind = iota
	answerSingle
	answerMultiple
)

// Answer is the raw submitted value for one question: absent, a single
// string, or a list of strings for multiple-select.
type Answer struct {
	kind     answerKind
	single   string
	multiple []string
}

func Unanswered() Answer { return Answer{} }

func SingleAnswer(value string) Answer {
	return Answer{kind: answerSingle, single: value}
}

func MultipleAnswer(values []string) Answer {
	return Answer{kind: answerMultiple, multiple: values}
}

// Answered reports whether the value counts as an actual answer: a trimmed
// non-empty string, or a non-empty list. Anything else is unanswered and is
// never penalized.
func (a Answer) Answered() bool {
	switch a.kind {
	case answerSingle:
		return strings.TrimSpace(a.single) != ""
	case answerMultiple:
		return len(a.multiple) > 0
	default:
		return false
	}
}

// IsMultiple reports whether the answer was submitted as a list.
func (a Answer) IsMultiple() bool { return a.kind == answerMultiple }

// Values returns the submitted values as a slice; single answers yield one
// element, unanswered yields nil.
func (a Answer) Values() []string {
	switch a.kind {
	case answerSingle:
		if strings.TrimSpace(a.single) == "" {
			return nil
		}
		return []string{a.single}
	case answerMultiple:
		return a.multiple
	default:
		return nil
	}
}

// UnmarshalJSON accepts a string, an array of strings, or null. Any other
// shape decodes as unanswered rather than failing: garbled submissions must
// still produce a gradable result.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*a = Unanswered()
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = SingleAnswer(single)
		return nil
	}
	var multiple []string
	if err := json.Unmarshal(data, &multiple); err == nil {
		*a = MultipleAnswer(multiple)
		return nil
	}
	*a = Unanswered()
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case answerSingle:
		return json.Marshal(a.single)
	case answerMultiple:
		return json.Marshal(a.multiple)
	default:
		return []byte("null"), nil
	}
}

// SubmittedAnswer is the per-question input from the client. TimeSpent is
// informational only and never affects the score.
type SubmittedAnswer struct {
	QuestionID       string `json:"questionId"`
	Answer           Answer `json:"answer"`
	TimeSpentSeconds int    `json:"timeSpent"`
}

// GradedAnswer records the outcome for one question, including a snapshot
// of the correct answer at grading time so the result stays displayable if
// the question later changes.
type GradedAnswer struct {
	QuestionID       string   `json:"questionId"`
	Submitted        Answer   `json:"submitted"`
	CorrectAnswer    []string `json:"correctAnswer"`
	Answered         bool     `json:"answered"`
	Correct          bool     `json:"correct"`
	MarksAwarded     float64  `json:"marksAwarded"`
	TimeSpentSeconds int      `json:"timeSpent"`
}

// BucketStat accumulates one breakdown bucket (per subject, difficulty, or
// category).
type BucketStat struct {
	Total      int     `json:"total"`
	Attempted  int     `json:"attempted"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

// SubmissionType distinguishes user-initiated submissions from timer
// auto-submits.
type SubmissionType string

const (
	SubmissionManual SubmissionType = "manual"
	SubmissionAuto   SubmissionType = "auto"
)

// Result is one immutable graded attempt. At most one Result exists per
// (student, test, attempt number); the storage layer enforces that.
type Result struct {
	ID                  string                `json:"id"`
	StudentID           string                `json:"studentId"`
	TestID              string                `json:"testId"`
	AttemptNumber       int                   `json:"attemptNumber"`
	StartedAt           time.Time             `json:"startedAt"`
	CompletedAt         time.Time             `json:"completedAt"`
	Score               float64               `json:"score"`
	TotalMarks          float64               `json:"totalMarks"`
	Percentage          float64               `json:"percentage"`
	Passed              bool                  `json:"passed"`
	CorrectCount        int                   `json:"correctAnswers"`
	IncorrectCount      int                   `json:"incorrectAnswers"`
	UnansweredCount     int                   `json:"unansweredQuestions"`
	SubmissionType      SubmissionType        `json:"submissionType"`
	Answers             []GradedAnswer        `json:"answers"`
	SubjectBreakdown    map[string]BucketStat `json:"subjectWise"`
	DifficultyBreakdown map[string]BucketStat `json:"difficultyWise"`
	CategoryBreakdown   map[string]BucketStat `json:"categoryWise"`
}
