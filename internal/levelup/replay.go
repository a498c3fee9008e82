package levelup

// Replay runs an ordered answer log through Step from start and returns the final
// tier. It has no side effects and never applies the speed bonus.
func Replay(log []Answer, eligible []int, start int) int {
	p, _ := ReplayProgress(log, eligible, start)
	return p.Book
}

// ReplayProgress is Replay that also returns the final progress and each step
func ReplayProgress(log []Answer, eligible []int, start int) (Progress, []StepResult) {
	ladder := NewLadder(eligible)
	p := Progress{Book: ladder.Snap(start)}
	steps := make([]StepResult, 0, len(log))
	for _, a := range log {
		steps = append(steps, Step(&p, ladder, a, false))
	}
	return p, steps
}
