package order

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Case is the case-handling policy used when comparing character data.
type Case int

const (
	// CaseMatters compares code points as they are.
	CaseMatters Case = iota
	// IgnoreCase compares case-folded code points.
	IgnoreCase
	// CaseBreaksTies compares the whole sequence ignoring case and, only if
	// the sequences are equal that way, compares the whole sequence again
	// with CaseMatters. Ties are never broken character by character.
	CaseBreaksTies
	// NormChars compares code points mapped through the loaded NormTable.
	NormChars
	// RawBreaksTies compares under NormChars and breaks ties with CaseMatters.
	RawBreaksTies
)

var caseNames = [...]string{
	CaseMatters:    "matters",
	IgnoreCase:     "ignore",
	CaseBreaksTies: "breaks-ties",
	NormChars:      "norm",
	RawBreaksTies:  "raw-breaks-ties",
}

func (c Case) String() string {
	if c < 0 || int(c) >= len(caseNames) {
		return fmt.Sprintf("Case(%d)", int(c))
	}
	return caseNames[c]
}

// ParseCase returns the policy named by s, as printed by Case.String.
func ParseCase(s string) (Case, error) {
	for i, name := range caseNames {
		if strings.EqualFold(s, name) {
			return Case(i), nil
		}
	}
	return CaseMatters, errors.Newf("unknown case policy %q", s)
}

// NeedsNormTable reports whether comparisons under c read the NormTable.
func (c Case) NeedsNormTable() bool {
	return c == NormChars || c == RawBreaksTies
}

// foldCase maps a code point to its case-insensitive representative.
func foldCase(r rune) rune {
	if r < utf8.RuneSelf {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
	return unicode.ToLower(unicode.ToUpper(r))
}

func folder(c Case) func(rune) rune {
	switch c {
	case CaseMatters:
		return nil
	case IgnoreCase, CaseBreaksTies:
		return foldCase
	case NormChars, RawBreaksTies:
		return mustNormTable(c).Norm
	}
	panic(errors.AssertionFailedf("unknown case policy %d", int(c)))
}

func breaksTies(c Case) bool {
	return c == CaseBreaksTies || c == RawBreaksTies
}

// CompareStrings orders two UTF-8 strings under the case policy c.
func CompareStrings(a, b string, c Case) int {
	fold := folder(c)
	if fold == nil {
		return strings.Compare(a, b)
	}
	if r := compareFoldedStrings(a, b, fold); r != Equal || !breaksTies(c) {
		return r
	}
	return strings.Compare(a, b)
}

func compareFoldedStrings(a, b string, fold func(rune) rune) int {
	for len(a) > 0 && len(b) > 0 {
		ra, na := rune(a[0]), 1
		if ra >= utf8.RuneSelf {
			ra, na = utf8.DecodeRuneInString(a)
		}
		rb, nb := rune(b[0]), 1
		if rb >= utf8.RuneSelf {
			rb, nb = utf8.DecodeRuneInString(b)
		}
		if ra != rb {
			if r := Compare(fold(ra), fold(rb)); r != Equal {
				return r
			}
		}
		a, b = a[na:], b[nb:]
	}
	return Compare(len(a), len(b))
}

// CompareRunes orders two rune sequences under the case policy c.
func CompareRunes(a, b []rune, c Case) int {
	fold := folder(c)
	if fold == nil {
		return compareRawRunes(a, b)
	}
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if r := Compare(fold(a[i]), fold(b[i])); r != Equal {
				return r
			}
		}
	}
	if r := Compare(len(a), len(b)); r != Equal || !breaksTies(c) {
		return r
	}
	return compareRawRunes(a, b)
}

func compareRawRunes(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if r := Compare(a[i], b[i]); r != Equal {
			return r
		}
	}
	return Compare(len(a), len(b))
}

// CompareChars orders two single code points under the case policy c.
func CompareChars(a, b rune, c Case) int {
	fold := folder(c)
	if fold == nil || a == b {
		return Compare(a, b)
	}
	if r := Compare(fold(a), fold(b)); r != Equal || !breaksTies(c) {
		return r
	}
	return Compare(a, b)
}
