package assess

import "errors"

var (
	ErrAnswered   = errors.New("question already answered")
	ErrNoQuestion = errors.New("no current question")
	ErrBadOption  = errors.New("option out of range")
)

// Feedback is the outcome of answering one question.
type Feedback struct {
	Correct     bool
	Chosen      int
	AnswerIndex int
	Explanation string
}

// Quiz walks an Assessment one question at a time.
type Quiz struct {
	a       *Assessment
	current int
	chosen  []int // -1 = unanswered
	correct int
}

// NewQuiz starts a quiz at the first question.
func NewQuiz(a *Assessment) *Quiz {
	chosen := make([]int, len(a.Questions))
	for i := range chosen {
		chosen[i] = -1
	}
	return &Quiz{a: a, chosen: chosen}
}

// Title returns the assessment title.
func (q *Quiz) Title() string { return q.a.Title }

// Len returns the number of questions.
func (q *Quiz) Len() int { return len(q.a.Questions) }

// Index returns the zero-based index of the current question.
func (q *Quiz) Index() int { return q.current }

// Current returns the current question; ok is false once the quiz is done.
func (q *Quiz) Current() (Question, bool) {
	if q.Done() {
		return Question{}, false
	}
	return q.a.Questions[q.current], true
}

// Answered reports whether the current question has been answered.
func (q *Quiz) Answered() bool {
	return !q.Done() && q.chosen[q.current] >= 0
}

// Answer records option for the current question.
func (q *Quiz) Answer(option int) (Feedback, error) {
	question, ok := q.Current()
	if !ok {
		return Feedback{}, ErrNoQuestion
	}
	if q.chosen[q.current] >= 0 {
		return Feedback{}, ErrAnswered
	}
	if option < 0 || option >= len(question.Options) {
		return Feedback{}, ErrBadOption
	}
	q.chosen[q.current] = option
	fb := Feedback{
		Chosen:      option,
		AnswerIndex: question.AnswerIndex(),
		Explanation: question.Explanation,
	}
	fb.Correct = fb.Chosen == fb.AnswerIndex
	if fb.Correct {
		q.correct++
	}
	return fb, nil
}

// Next advances past an answered question and reports whether another
// question follows.
func (q *Quiz) Next() bool {
	if q.Done() || q.chosen[q.current] < 0 {
		return false
	}
	q.current++
	return !q.Done()
}

// Done reports whether every question has been passed.
func (q *Quiz) Done() bool {
	return q.current >= len(q.a.Questions)
}

// Score returns correct answers so far and the total question count.
func (q *Quiz) Score() (correct, total int) {
	return q.correct, len(q.a.Questions)
}

// Percent returns the score as 0-100.
func (q *Quiz) Percent() int {
	if len(q.a.Questions) == 0 {
		return 0
	}
	return q.correct * 100 / len(q.a.Questions)
}
