// Package slab implements a two-tier pool of fixed-size primitive buffers.
//
// A slice is a fixed-length array of one element type, 64KiB in size. A slab
// is exactly SlabSlices byte slices recycled as a unit. Each Pool keeps a
// central store and a set of peripheral stores; a goroutine always uses the
// peripheral store its id hashes to, so goroutines rarely contend on the same
// ring. All stores are lock-free rings.
//
// Byte slices held by the pool carry Stamp in their first element. GetBytes
// verifies and clears the stamp, so a write through a slice that was already
// put back is caught the next time the slice is withdrawn.
package slab

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"go.uber.org/zap"

	"github.com/lanrat/gravel/queue"
)

// Slice lengths per element type, each 64KiB worth of elements.
const (
	ByteSliceLen   = 1 << 16
	CharSliceLen   = ByteSliceLen / 2
	IntSliceLen    = ByteSliceLen / 4
	LongSliceLen   = ByteSliceLen / 8
	DoubleSliceLen = ByteSliceLen / 8

	// SlabSlices is the number of byte slices in a slab.
	SlabSlices = 256

	// Stamp marks slot 0 of every byte slice held by the pool.
	Stamp byte = 0xA5
)

const sliceBytes = ByteSliceLen

type (
	bytePage   [ByteSliceLen]byte
	charPage   [CharSliceLen]uint16
	intPage    [IntSliceLen]int32
	longPage   [LongSliceLen]int64
	doublePage [DoubleSliceLen]float64
)

// Slab is a group of SlabSlices byte slices handed out and returned together.
type Slab struct {
	pages [SlabSlices]*bytePage
}

// Slice returns the i-th byte slice of the slab.
func (s *Slab) Slice(i int) []byte {
	return s.pages[i][:]
}

// Len returns SlabSlices.
func (s *Slab) Len() int {
	return SlabSlices
}

// tier is one element type's central ring and peripheral rings.
type tier[A any] struct {
	central *queue.Ring[A]
	local   []*queue.Ring[A]
}

func newTier[A any](peripherals, localCap, centralCap int) tier[A] {
	t := tier[A]{
		central: queue.NewRing[A](centralCap),
		local:   make([]*queue.Ring[A], peripherals),
	}
	for i := range t.local {
		t.local[i] = queue.NewRing[A](localCap)
	}
	return t
}

// steal takes an item from any store, starting with the central one.
func (t *tier[A]) steal() *A {
	if a := t.central.Get(); a != nil {
		return a
	}
	for _, r := range t.local {
		if a := r.Get(); a != nil {
			return a
		}
	}
	return nil
}

func (t *tier[A]) available() (central, local int) {
	central = t.central.Len()
	for _, r := range t.local {
		local += r.Len()
	}
	return central, local
}

// Pool recycles fixed-size slices and slabs. It is safe for concurrent use.
type Pool struct {
	cfg    Config
	logger *zap.Logger
	mask   uint64

	bytes   tier[bytePage]
	slabs   tier[Slab]
	chars   tier[charPage]
	ints    tier[intPage]
	longs   tier[longPage]
	doubles tier[doublePage]

	stats     counters
	allocated atomic.Int64
	reserve   atomic.Pointer[[]byte]

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a pool. A nil config uses DefaultConfig.
func New(config *Config) *Pool {
	cfg := mergeConfig(config)
	n := cfg.Peripherals
	p := &Pool{
		cfg:     *cfg,
		logger:  cfg.Logger,
		mask:    uint64(n - 1),
		bytes:   newTier[bytePage](n, cfg.LocalSlices, cfg.CentralSlices),
		slabs:   newTier[Slab](n, cfg.LocalSlabs, cfg.CentralSlabs),
		chars:   newTier[charPage](n, cfg.LocalSlices, cfg.CentralSlices),
		ints:    newTier[intPage](n, cfg.LocalSlices, cfg.CentralSlices),
		longs:   newTier[longPage](n, cfg.LocalSlices, cfg.CentralSlices),
		doubles: newTier[doublePage](n, cfg.LocalSlices, cfg.CentralSlices),
		done:    make(chan struct{}),
	}
	if cfg.ReserveBytes > 0 {
		r := make([]byte, cfg.ReserveBytes)
		p.reserve.Store(&r)
	}
	return p
}

// home returns the peripheral store index of the calling goroutine.
func (p *Pool) home() int {
	h := uint64(goid.Get()) * 0x9E3779B97F4A7C15
	return int((h >> 32) & p.mask)
}

func stamp(pg *bytePage) {
	pg[0] = Stamp
}

func unstamp(pg *bytePage) {
	if pg[0] != Stamp {
		panic(corrupted(pg[0]))
	}
	pg[0] = 0
}

func newStampedPage() *bytePage {
	pg := new(bytePage)
	stamp(pg)
	return pg
}

// GetBytes returns a byte slice of length ByteSliceLen. Its contents are
// whatever the previous holder left, except element 0 which is zero.
func (p *Pool) GetBytes() []byte {
	pg := p.getPage()
	unstamp(pg)
	return pg[:]
}

func (p *Pool) getPage() *bytePage {
	home := p.home()
	if pg := p.bytes.local[home].Get(); pg != nil {
		p.stats.reuses.Add(1)
		return pg
	}
	if pg := p.splitSlab(home); pg != nil {
		p.stats.reuses.Add(1)
		return pg
	}
	if pg := p.bytes.central.Get(); pg != nil {
		p.stats.reuses.Add(1)
		return pg
	}
	return allocate(p, "byte", sliceBytes, newStampedPage, func() *bytePage {
		if pg := p.bytes.steal(); pg != nil {
			return pg
		}
		return p.splitSlab(home)
	})
}

// splitSlab breaks a cached slab into slices, keeps one for the caller and
// caches the rest in the home store.
func (p *Pool) splitSlab(home int) *bytePage {
	s := p.slabs.local[home].Get()
	if s == nil {
		if s = p.slabs.central.Get(); s == nil {
			return nil
		}
	}
	p.stats.splits.Add(1)
	for _, pg := range s.pages[1:] {
		p.cachePage(home, pg)
	}
	return s.pages[0]
}

func (p *Pool) cachePage(home int, pg *bytePage) {
	if p.bytes.local[home].Put(pg) || p.bytes.central.Put(pg) {
		return
	}
	p.drop(sliceBytes)
}

// PutBytes returns a slice obtained from GetBytes. The slice may have been
// resliced, but its capacity must still be ByteSliceLen. The caller must not
// touch b afterwards.
func (p *Pool) PutBytes(b []byte) {
	b = b[:cap(b)]
	if len(b) != ByteSliceLen {
		panic(wrongSize("byte", len(b), ByteSliceLen))
	}
	pg := (*bytePage)(b)
	stamp(pg)
	home := p.home()
	if p.bytes.local[home].Put(pg) {
		return
	}
	if p.coalesce(home, pg) {
		return
	}
	if p.bytes.central.Put(pg) {
		return
	}
	p.drop(sliceBytes)
}

// coalesce gathers pg and SlabSlices-1 slices of the home store into a slab
// cached in the home store or centrally.
func (p *Pool) coalesce(home int, pg *bytePage) bool {
	local := p.bytes.local[home]
	if local.Len() < SlabSlices-1 || (p.slabs.local[home].Free() == 0 && p.slabs.central.Free() == 0) {
		return false
	}
	s := &Slab{}
	s.pages[0] = pg
	n := 1
	for n < SlabSlices {
		q := local.Get()
		if q == nil {
			break
		}
		s.pages[n] = q
		n++
	}
	if n == SlabSlices && (p.slabs.local[home].Put(s) || p.slabs.central.Put(s)) {
		p.stats.coalesces.Add(1)
		return true
	}
	for _, q := range s.pages[1:n] {
		p.cachePage(home, q)
	}
	return false
}

// GetSlab returns SlabSlices byte slices as one unit.
func (p *Pool) GetSlab() *Slab {
	home := p.home()
	s := p.slabs.local[home].Get()
	if s == nil {
		s = p.slabs.central.Get()
	}
	if s != nil {
		p.stats.reuses.Add(1)
	} else {
		s = allocate(p, "slab", SlabSlices*sliceBytes, newStampedSlab, p.slabs.steal)
	}
	for _, pg := range s.pages {
		unstamp(pg)
	}
	return s
}

func newStampedSlab() *Slab {
	s := &Slab{}
	for i := range s.pages {
		s.pages[i] = newStampedPage()
	}
	return s
}

// PutSlab returns a slab obtained from GetSlab. When no slab store has room
// its slices are cached one by one.
func (p *Pool) PutSlab(s *Slab) {
	for _, pg := range s.pages {
		stamp(pg)
	}
	home := p.home()
	if p.slabs.local[home].Put(s) || p.slabs.central.Put(s) {
		return
	}
	for _, pg := range s.pages {
		p.cachePage(home, pg)
	}
}

// getTyped serves a non-byte slice from the home store, the central store or
// a fresh allocation.
func getTyped[A any](p *Pool, t *tier[A], kind string) *A {
	if a := t.local[p.home()].Get(); a != nil {
		p.stats.reuses.Add(1)
		return a
	}
	if a := t.central.Get(); a != nil {
		p.stats.reuses.Add(1)
		return a
	}
	return allocate(p, kind, sliceBytes, func() *A { return new(A) }, t.steal)
}

func putTyped[A any](p *Pool, t *tier[A], a *A) {
	if t.local[p.home()].Put(a) || t.central.Put(a) {
		return
	}
	p.drop(sliceBytes)
}

// GetChars returns a uint16 slice of length CharSliceLen.
func (p *Pool) GetChars() []uint16 {
	return getTyped(p, &p.chars, "char")[:]
}

// PutChars returns a slice obtained from GetChars.
func (p *Pool) PutChars(s []uint16) {
	s = s[:cap(s)]
	if len(s) != CharSliceLen {
		panic(wrongSize("char", len(s), CharSliceLen))
	}
	putTyped(p, &p.chars, (*charPage)(s))
}

// GetInts returns an int32 slice of length IntSliceLen.
func (p *Pool) GetInts() []int32 {
	return getTyped(p, &p.ints, "int")[:]
}

// PutInts returns a slice obtained from GetInts.
func (p *Pool) PutInts(s []int32) {
	s = s[:cap(s)]
	if len(s) != IntSliceLen {
		panic(wrongSize("int", len(s), IntSliceLen))
	}
	putTyped(p, &p.ints, (*intPage)(s))
}

// GetLongs returns an int64 slice of length LongSliceLen.
func (p *Pool) GetLongs() []int64 {
	return getTyped(p, &p.longs, "long")[:]
}

// PutLongs returns a slice obtained from GetLongs.
func (p *Pool) PutLongs(s []int64) {
	s = s[:cap(s)]
	if len(s) != LongSliceLen {
		panic(wrongSize("long", len(s), LongSliceLen))
	}
	putTyped(p, &p.longs, (*longPage)(s))
}

// GetDoubles returns a float64 slice of length DoubleSliceLen.
func (p *Pool) GetDoubles() []float64 {
	return getTyped(p, &p.doubles, "double")[:]
}

// PutDoubles returns a slice obtained from GetDoubles.
func (p *Pool) PutDoubles(s []float64) {
	s = s[:cap(s)]
	if len(s) != DoubleSliceLen {
		panic(wrongSize("double", len(s), DoubleSliceLen))
	}
	putTyped(p, &p.doubles, (*doublePage)(s))
}
