package optimize

import (
	"errors"
	"fmt"
)

// ErrNoFolds reports a series too short for the requested fold count.
var ErrNoFolds = errors.New("optimize: not enough bars for walk-forward folds")

// Fold is one expanding-window train/test pair. All indices are half-open
// bar offsets: [TrainStart, TrainEnd) and [TestStart, TestEnd).
type Fold struct {
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

func (f Fold) String() string {
	return fmt.Sprintf("train[%d:%d) test[%d:%d)", f.TrainStart, f.TrainEnd, f.TestStart, f.TestEnd)
}

// Folds splits n bars into k chronologically ordered folds. Every test
// window holds n/(k+1) bars and the last one ends at n; each train window
// is everything before its test window. Test windows never overlap.
func Folds(n, k int) ([]Fold, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1 (got %d)", ErrNoFolds, k)
	}
	size := n / (k + 1)
	if size < 1 {
		return nil, fmt.Errorf("%w: %d bars for %d folds", ErrNoFolds, n, k)
	}

	folds := make([]Fold, k)
	for i := range folds {
		start := n - (k-i)*size
		folds[i] = Fold{
			TrainStart: 0,
			TrainEnd:   start,
			TestStart:  start,
			TestEnd:    start + size,
		}
	}
	return folds, nil
}
