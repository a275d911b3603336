package gravel

import (
	"github.com/cockroachdb/errors"

	"github.com/lanrat/gravel/order"
	"github.com/lanrat/gravel/slab"
	"github.com/lanrat/gravel/store"
)

// unsupportedSwap panics; store records are reordered through a sort map.
func unsupportedSwap(kind string, i, j int) {
	panic(errors.WithAssertionFailure(errors.Wrapf(ErrUnsupportedSwap,
		"%s records %d and %d cannot be moved, sort through a sort map", kind, i, j)))
}

// BytesComparator compares the records of a store.Bytes. Each comparison
// decodes both records into scratch buffers drawn from a pool, so a
// BytesComparator must be forked for concurrent use. Swap panics with
// ErrUnsupportedSwap: use SortMap instead of Sort.
type BytesComparator struct {
	st   *store.Bytes
	pool *slab.Pool
	cmp  func(a, b []byte) int
	desc bool
	a, b scratch[byte]
}

// NewBytesComparator returns a comparator over st ordered by compare, or by
// unsigned lexicographic order when compare is nil. Scratch buffers come from
// pool; a nil pool allocates them.
func NewBytesComparator(st *store.Bytes, pool *slab.Pool, compare func(a, b []byte) int, desc bool) *BytesComparator {
	if compare == nil {
		compare = order.CompareBytes
	}
	return &BytesComparator{
		st:   st,
		pool: pool,
		cmp:  compare,
		desc: desc,
		a:    byteScratch(pool),
		b:    byteScratch(pool),
	}
}

func (c *BytesComparator) Len() int { return c.st.Len() }

func (c *BytesComparator) Compare(i, j int) int {
	li, lj := c.st.RecordLen(i), c.st.RecordLen(j)
	n := max(li, lj)
	a := c.st.Read(i, c.a.grow(n)[:li])
	b := c.st.Read(j, c.b.grow(n)[:lj])
	return c.cmp(a, b)
}

func (c *BytesComparator) Swap(i, j int) { unsupportedSwap("byte store", i, j) }

func (c *BytesComparator) Descending() bool { return c.desc }

func (c *BytesComparator) Fork() Comparator {
	return NewBytesComparator(c.st, c.pool, c.cmp, c.desc)
}

func (c *BytesComparator) Close() {
	c.a.release()
	c.b.release()
}

// VarIntsComparator compares the records of a store.VarInts element by
// element, a shorter prefix first. Like BytesComparator it decodes into
// pooled scratch and cannot swap.
type VarIntsComparator struct {
	st   *store.VarInts
	pool *slab.Pool
	desc bool
	a, b scratch[int64]
}

// NewVarIntsComparator returns a comparator over st.
func NewVarIntsComparator(st *store.VarInts, pool *slab.Pool, desc bool) *VarIntsComparator {
	return &VarIntsComparator{
		st:   st,
		pool: pool,
		desc: desc,
		a:    longScratch(pool),
		b:    longScratch(pool),
	}
}

func (c *VarIntsComparator) Len() int { return c.st.Len() }

func (c *VarIntsComparator) Compare(i, j int) int {
	ci, cj := c.st.Count(i), c.st.Count(j)
	n := max(ci, cj)
	a := c.st.Read(i, c.a.grow(n)[:ci])
	b := c.st.Read(j, c.b.grow(n)[:cj])
	return order.CompareInts(a, b)
}

func (c *VarIntsComparator) Swap(i, j int) { unsupportedSwap("varint store", i, j) }

func (c *VarIntsComparator) Descending() bool { return c.desc }

func (c *VarIntsComparator) Fork() Comparator {
	return NewVarIntsComparator(c.st, c.pool, c.desc)
}

func (c *VarIntsComparator) Close() {
	c.a.release()
	c.b.release()
}

// BytesFinder searches a sorted store.Bytes for a target record.
type BytesFinder struct {
	st     *store.Bytes
	target []byte
	cmp    func(a, b []byte) int
	desc   bool
	buf    scratch[byte]
}

// NewBytesFinder returns a finder for target in st, which must be sorted by
// compare (unsigned lexicographic when nil) in the given direction. Close
// returns its decode buffer to pool.
func NewBytesFinder(st *store.Bytes, pool *slab.Pool, target []byte, compare func(a, b []byte) int, desc bool) *BytesFinder {
	if compare == nil {
		compare = order.CompareBytes
	}
	return &BytesFinder{st: st, target: target, cmp: compare, desc: desc, buf: byteScratch(pool)}
}

func (f *BytesFinder) Len() int { return f.st.Len() }

func (f *BytesFinder) CompareTo(i int) int {
	rec := f.st.Read(i, f.buf.grow(f.st.RecordLen(i)))
	return directed(f.cmp(f.target, rec), f.desc)
}

func (f *BytesFinder) Close() { f.buf.release() }

// VarIntsFinder searches a sorted store.VarInts for a target record.
type VarIntsFinder struct {
	st     *store.VarInts
	target []int64
	desc   bool
	buf    scratch[int64]
}

// NewVarIntsFinder returns a finder for target in st.
func NewVarIntsFinder(st *store.VarInts, pool *slab.Pool, target []int64, desc bool) *VarIntsFinder {
	return &VarIntsFinder{st: st, target: target, desc: desc, buf: longScratch(pool)}
}

func (f *VarIntsFinder) Len() int { return f.st.Len() }

func (f *VarIntsFinder) CompareTo(i int) int {
	rec := f.st.Read(i, f.buf.grow(f.st.Count(i)))
	return directed(order.CompareInts(f.target, rec), f.desc)
}

func (f *VarIntsFinder) Close() { f.buf.release() }
