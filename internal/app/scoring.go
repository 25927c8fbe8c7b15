package app

import (
	"mocktest-service/internal/domain"
)

// ResultDraft is the aggregate grading outcome before materialization.
// RawScore keeps the possibly-negative running total; Score, Percentage and
// Passed follow the platform's historical floor semantics (see ScoreTest).
type ResultDraft struct {
	RawScore            float64
	Score               float64
	Percentage          float64
	Passed              bool
	CorrectCount        int
	IncorrectCount      int
	UnansweredCount     int
	Answers             []domain.GradedAnswer
	SubjectBreakdown    map[string]domain.BucketStat
	DifficultyBreakdown map[string]domain.BucketStat
	CategoryBreakdown   map[string]domain.BucketStat
}

// ScoreTest grades every question in the test's fixed question list against
// the submitted answers, keyed by question ID. Questions the client omitted
// count as unanswered, so every question is always accounted for.
//
// Floor semantics are deliberate and preserved from the platform's original
// behavior: the stored score is floored at zero, but the percentage is
// computed from the raw (possibly negative) score before flooring, and the
// pass check compares the raw score against the passing marks.
func ScoreTest(test domain.MockTest, answers map[string]domain.SubmittedAnswer) ResultDraft {
	draft := ResultDraft{
		Answers:             make([]domain.GradedAnswer, 0, len(test.Questions)),
		SubjectBreakdown:    make(map[string]domain.BucketStat),
		DifficultyBreakdown: make(map[string]domain.BucketStat),
		CategoryBreakdown:   make(map[string]domain.BucketStat),
	}

	for _, question := range test.Questions {
		submitted, ok := answers[question.ID]
		if !ok {
			submitted = domain.SubmittedAnswer{QuestionID: question.ID, Answer: domain.Unanswered()}
		}

		outcome := GradeAnswer(question, submitted.Answer, test.MarksPerQuestion, test.NegativeMarking)
		draft.RawScore += outcome.Marks

		switch {
		case !outcome.Answered:
			draft.UnansweredCount++
		case outcome.Correct:
			draft.CorrectCount++
		default:
			draft.IncorrectCount++
		}

		draft.Answers = append(draft.Answers, domain.GradedAnswer{
			QuestionID:       question.ID,
			Submitted:        submitted.Answer,
			CorrectAnswer:    question.CorrectValues(),
			Answered:         outcome.Answered,
			Correct:          outcome.Correct,
			MarksAwarded:     outcome.Marks,
			TimeSpentSeconds: submitted.TimeSpentSeconds,
		})

		foldBucket(draft.SubjectBreakdown, bucketKey(question.Subject), outcome)
		foldBucket(draft.DifficultyBreakdown, bucketKey(string(question.Difficulty)), outcome)
		foldBucket(draft.CategoryBreakdown, bucketKey(question.Category), outcome)
	}

	finalizeBuckets(draft.SubjectBreakdown)
	finalizeBuckets(draft.DifficultyBreakdown)
	finalizeBuckets(draft.CategoryBreakdown)

	draft.Score = draft.RawScore
	if draft.Score < 0 {
		draft.Score = 0
	}
	if test.TotalMarks > 0 {
		draft.Percentage = draft.RawScore / test.TotalMarks * 100
	}
	if draft.Percentage < 0 {
		draft.Percentage = 0
	}
	draft.Passed = draft.RawScore >= test.PassingMarks

	return draft
}

func foldBucket(buckets map[string]domain.BucketStat, key string, outcome GradeOutcome) {
	stat := buckets[key]
	stat.Total++
	if outcome.Answered {
		stat.Attempted++
	}
	if outcome.Correct {
		stat.Correct++
	}
	buckets[key] = stat
}

func finalizeBuckets(buckets map[string]domain.BucketStat) {
	for key, stat := range buckets {
		if stat.Attempted > 0 {
			stat.Percentage = float64(stat.Correct) / float64(stat.Attempted) * 100
		}
		buckets[key] = stat
	}
}
