package market

import "fmt"

// Split partitions bars chronologically into train, test and validation
// windows. The validation window receives whatever remains after train and
// test, so the three always cover the input exactly.
func Split(bars Bars, trainFrac, testFrac float64) (train, test, validation Bars, err error) {
	if trainFrac <= 0 || testFrac < 0 || trainFrac+testFrac > 1 {
		return nil, nil, nil, fmt.Errorf("invalid split fractions train=%v test=%v", trainFrac, testFrac)
	}

	n := len(bars)
	trainN := int(float64(n) * trainFrac)
	testN := int(float64(n) * testFrac)

	train = bars[:trainN:trainN]
	test = bars[trainN : trainN+testN : trainN+testN]
	validation = bars[trainN+testN:]
	return train, test, validation, nil
}

// Window returns bars in the half-open index range [start, end).
func (bs Bars) Window(start, end int) Bars {
	if start < 0 {
		start = 0
	}
	if end > len(bs) {
		end = len(bs)
	}
	if start >= end {
		return Bars{}
	}
	return bs[start:end:end]
}
