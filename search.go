package gravel

// NotFound is returned by FindIndex when no element equals the target.
const NotFound = -1

// All searches work on the range [first, first+n) of a Finder whose sequence
// is sorted in its direction, and return absolute indexes. Insertion points
// may equal first+n; the Before variants may return first-1.
//
// The From variants start at hint and gallop outward, doubling the step until
// the answer is bracketed, then narrow the bracket. They cost O(log d) where
// d is the distance between hint and answer, which suits near-sequential
// lookups such as merging. A hint outside the range is clamped to it.

// FindIndex returns an index in [first, first+n) whose element equals the
// target, or NotFound.
func FindIndex(f Finder, first, n int) int {
	checkRange(f.Len(), first, n)
	if n == 0 {
		return NotFound
	}
	lo, hi := first, first+n-1
	c := f.CompareTo(lo)
	if c == 0 {
		return lo
	}
	if c < 0 {
		return NotFound
	}
	if hi == lo {
		return NotFound
	}
	c = f.CompareTo(hi)
	if c == 0 {
		return hi
	}
	if c > 0 {
		return NotFound
	}
	// target is after lo and before hi
	for hi-lo > 1 {
		mid := int(uint(lo+hi) >> 1)
		c = f.CompareTo(mid)
		switch {
		case c == 0:
			return mid
		case c > 0:
			lo = mid
		default:
			hi = mid
		}
	}
	return NotFound
}

// FindIndexAfter returns the first index whose element sorts strictly after
// the target, or first+n if there is none.
func FindIndexAfter(f Finder, first, n int) int {
	checkRange(f.Len(), first, n)
	return insertionPoint(f, first, first+n, true)
}

// FindIndexEqualOrAfter returns the first index whose element does not sort
// before the target, or first+n if there is none.
func FindIndexEqualOrAfter(f Finder, first, n int) int {
	checkRange(f.Len(), first, n)
	return insertionPoint(f, first, first+n, false)
}

// FindIndexBefore returns the last index whose element sorts strictly before
// the target, or first-1 if there is none.
func FindIndexBefore(f Finder, first, n int) int {
	return FindIndexEqualOrAfter(f, first, n) - 1
}

// FindIndexEqualOrBefore returns the last index whose element does not sort
// after the target, or first-1 if there is none.
func FindIndexEqualOrBefore(f Finder, first, n int) int {
	return FindIndexAfter(f, first, n) - 1
}

// FindIndexFrom is FindIndex starting at hint.
func FindIndexFrom(f Finder, first, n, hint int) int {
	checkRange(f.Len(), first, n)
	if n == 0 {
		return NotFound
	}
	hint = clamp(hint, first, first+n-1)
	if f.CompareTo(hint) == 0 {
		return hint
	}
	i := gallop(f, first, first+n, hint, false)
	if i < first+n && f.CompareTo(i) == 0 {
		return i
	}
	return NotFound
}

// FindIndexAfterFrom is FindIndexAfter starting at hint.
func FindIndexAfterFrom(f Finder, first, n, hint int) int {
	checkRange(f.Len(), first, n)
	if n == 0 {
		return first
	}
	return gallop(f, first, first+n, clamp(hint, first, first+n-1), true)
}

// FindIndexEqualOrAfterFrom is FindIndexEqualOrAfter starting at hint.
func FindIndexEqualOrAfterFrom(f Finder, first, n, hint int) int {
	checkRange(f.Len(), first, n)
	if n == 0 {
		return first
	}
	return gallop(f, first, first+n, clamp(hint, first, first+n-1), false)
}

// FindIndexBeforeFrom is FindIndexBefore starting at hint.
func FindIndexBeforeFrom(f Finder, first, n, hint int) int {
	return FindIndexEqualOrAfterFrom(f, first, n, hint) - 1
}

// FindIndexEqualOrBeforeFrom is FindIndexEqualOrBefore starting at hint.
func FindIndexEqualOrBeforeFrom(f Finder, first, n, hint int) int {
	return FindIndexAfterFrom(f, first, n, hint) - 1
}

func clamp(i, lo, hi int) int {
	return min(max(i, lo), hi)
}

// past reports whether element i lies at or beyond the insertion point: it
// sorts after the target if strict, otherwise it does not sort before it.
// It is false then true across a sorted range.
func past(f Finder, i int, strict bool) bool {
	if strict {
		return f.CompareTo(i) < 0
	}
	return f.CompareTo(i) <= 0
}

// insertionPoint returns the first i in [lo, hi) where past holds, or hi.
// Both ends are checked before narrowing.
func insertionPoint(f Finder, lo, hi int, strict bool) int {
	if lo == hi {
		return lo
	}
	if !past(f, hi-1, strict) {
		return hi
	}
	if past(f, lo, strict) {
		return lo
	}
	return narrow(f, lo+1, hi-1, strict)
}

// narrow returns the first i in [lo, hi) where past holds, or hi.
func narrow(f Finder, lo, hi int, strict bool) int {
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if past(f, mid, strict) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// gallop returns the first i in [lo, hi) where past holds, or hi, probing
// outward from hint in doubling steps.
func gallop(f Finder, lo, hi, hint int, strict bool) int {
	if past(f, hint, strict) {
		// answer in [lo, hint]
		right, step := hint, 1
		left := hint - step
		for left >= lo && past(f, left, strict) {
			right = left
			step <<= 1
			left = hint - step
		}
		return narrow(f, max(left+1, lo), right, strict)
	}
	// answer in (hint, hi]
	left, step := hint, 1
	right := hint + step
	for right < hi && !past(f, right, strict) {
		left = right
		step <<= 1
		right = hint + step
	}
	return narrow(f, left+1, min(right, hi), strict)
}
