package lifter

import (
	"github.com/goccy/go-json"
)

// Attempts holds up to four attempts per lift. Failed attempts appear in the
// export as negative weights and are kept as such.
type Attempts struct {
	Squat    [AttemptsPerLift]Optional[float64]
	Bench    [AttemptsPerLift]Optional[float64]
	Deadlift [AttemptsPerLift]Optional[float64]
}

// Lift returns the attempt sequence of one lift.
func (a Attempts) Lift(lift Lift) (seq [AttemptsPerLift]Optional[float64]) {
	switch lift {
	case Squat:
		seq = a.Squat
	case Bench:
		seq = a.Bench
	case Deadlift:
		seq = a.Deadlift
	}
	return seq
}

// Best returns the largest present attempt of lift, or absent when none was recorded.
// It is recomputed from the attempts; the export's own best-of columns are not consulted.
func (a Attempts) Best(lift Lift) (best Optional[float64]) {
	for _, attempt := range a.Lift(lift) {
		v, ok := attempt.Get()
		if !ok {
			continue
		}
		if cur, have := best.Get(); !have || v > cur {
			best = Some(v)
		}
	}
	return best
}

// Total sums the present Best values. It is absent only when no lift has a Best.
func (a Attempts) Total() (total Optional[float64]) {
	var sum float64
	found := false
	for _, lift := range []Lift{Squat, Bench, Deadlift} {
		if v, ok := a.Best(lift).Get(); ok {
			sum += v
			found = true
		}
	}
	if found {
		total = Some(sum)
	}
	return total
}

type attemptsJSON struct {
	Squat        [AttemptsPerLift]Optional[float64] `json:"squat"`
	Bench        [AttemptsPerLift]Optional[float64] `json:"bench"`
	Deadlift     [AttemptsPerLift]Optional[float64] `json:"deadlift"`
	BestSquat    Optional[float64]                  `json:"best_squat"`
	BestBench    Optional[float64]                  `json:"best_bench"`
	BestDeadlift Optional[float64]                  `json:"best_deadlift"`
	Total        Optional[float64]                  `json:"total"`
}

// MarshalJSON includes the derived bests and total next to the raw attempts.
func (a Attempts) MarshalJSON() (data []byte, err error) {
	data, err = json.Marshal(attemptsJSON{
		Squat:        a.Squat,
		Bench:        a.Bench,
		Deadlift:     a.Deadlift,
		BestSquat:    a.Best(Squat),
		BestBench:    a.Best(Bench),
		BestDeadlift: a.Best(Deadlift),
		Total:        a.Total(),
	})
	return data, err
}
