package diff

// ChanResult holds a single diff result: the difference type (NEW/OLD) and
// the item.
type ChanResult[T any] struct {
	// D indicates whether the item is NEW (only in B) or OLD (only in A)
	D Delta
	// S contains the item that differs between the sequences
	S T
}

// ResultChan creates a channel-based result processing system. It returns a
// ResultFunc that can be passed to Generic and a channel for consuming the
// results in a separate goroutine, so the diff runs in one goroutine while
// results are processed in another.
//
// The caller is responsible for closing the returned channel when done.
func ResultChan[T any]() (ResultFunc[T], chan *ChanResult[T]) {
	c := make(chan *ChanResult[T], 1)
	f := func(d Delta, s T) error {
		c <- &ChanResult[T]{D: d, S: s}
		return nil
	}
	return f, c
}

// StringChanResult holds a single diff result from a string comparison.
type StringChanResult = ChanResult[string]

// StringResultChan is ResultChan for diff.Strings().
func StringResultChan() (StringResultFunc, chan *StringChanResult) {
	f, c := ResultChan[string]()
	return StringResultFunc(f), c
}
