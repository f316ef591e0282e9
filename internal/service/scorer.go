package service

import "cbt_backend/internal/model"

// marksPerCorrectAnswer is the flat mark awarded per correct answer.
const marksPerCorrectAnswer = 1.0

// ScoreResult is the outcome of scoring one attempt. Answers carries the rows
// with IsCorrect / MarksAwarded filled in, ready to persist.
type ScoreResult struct {
	Attempted    int
	Correct      int
	ScorePercent float64
	Answers      []model.TestAnswer
}

// Scorer computes an attempt's final score strictly from attempted questions.
// It is a pure function of the answer rows and the question key: re-running
// it against the same persisted answers always yields the same result.
type Scorer struct{}

// Score walks the attempt's answer rows. Placeholder rows that were presented
// but never answered keep nil correctness and are excluded from the
// denominator, so an adaptive attempt that presented fewer questions than the
// nominal pool is never penalized for the remainder.
func (Scorer) Score(answers []model.TestAnswer, questions map[uint]model.Question) ScoreResult {
	res := ScoreResult{Answers: answers}
	totalMarks := 0.0

	for i := range res.Answers {
		a := &res.Answers[i]
		if !a.Attempted() {
			a.IsCorrect = nil
			a.MarksAwarded = nil
			continue
		}
		res.Attempted++

		q, ok := questions[a.QuestionID]
		correct := ok && *a.SelectedOptionIndex == q.CorrectOptionIndex
		marks := 0.0
		if correct {
			res.Correct++
			marks = marksPerCorrectAnswer
			totalMarks += marks
		}
		a.IsCorrect = &correct
		a.MarksAwarded = &marks
	}

	if res.Attempted > 0 {
		res.ScorePercent = totalMarks / float64(res.Attempted) * 100.0
	}
	return res
}
