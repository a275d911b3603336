package order

import (
	"sync/atomic"
	"unicode"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNoNormTable is raised when NormChars or RawBreaksTies is used before a
// NormTable has been loaded.
var ErrNoNormTable = errors.New("character normalization table not loaded")

// NormTable maps a code point to the representative it is compared as under
// NormChars and RawBreaksTies.
type NormTable interface {
	Norm(r rune) rune
}

var loadedTable atomic.Pointer[NormTable]

// LoadNormTable installs t as the process-wide normalization table. Passing
// nil unloads the current table.
func LoadNormTable(t NormTable) {
	if t == nil {
		loadedTable.Store(nil)
		return
	}
	loadedTable.Store(&t)
}

// LoadedNormTable returns the installed table, or nil.
func LoadedNormTable() NormTable {
	if t := loadedTable.Load(); t != nil {
		return *t
	}
	return nil
}

func mustNormTable(c Case) NormTable {
	t := LoadedNormTable()
	if t == nil {
		panic(errors.WithAssertionFailure(errors.Wrapf(ErrNoNormTable, "comparing with case policy %s", c)))
	}
	return t
}

// tableSpan covers Latin, Greek, Cyrillic and the other alphabetic blocks
// below the CJK range; code points above it fold with foldCase.
const tableSpan = 0x3000

type runeTable struct {
	runes [tableSpan]rune
}

func (t *runeTable) Norm(r rune) rune {
	if r >= 0 && r < tableSpan {
		return t.runes[r]
	}
	return foldCase(r)
}

// DefaultNormTable builds a table that strips diacritics and folds case:
// each code point is decomposed (NFD), nonspacing marks are dropped, and the
// base is case folded.
func DefaultNormTable() NormTable {
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	fold := cases.Fold()
	t := &runeTable{}
	for r := rune(0); r < tableSpan; r++ {
		t.runes[r] = normRune(r, strip, fold)
	}
	return t
}

func normRune(r rune, strip transform.Transformer, fold cases.Caser) rune {
	if r < 0x80 {
		return foldCase(r)
	}
	s, _, err := transform.String(strip, string(r))
	if err != nil || s == "" {
		return foldCase(r)
	}
	s = fold.String(s)
	for _, base := range s {
		return base
	}
	return foldCase(r)
}
