// Package store holds append-only, in-memory record stores whose payloads are
// packed into pooled byte pages. Records are addressed by index; reading one
// decodes it into a caller-supplied buffer.
package store

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/lanrat/gravel/slab"
)

const pageLen = slab.ByteSliceLen

// pages is a growable sequence of fixed-size byte pages addressed by a flat
// position.
type pages struct {
	pool  *slab.Pool
	data  [][]byte
	size  int64
	index []int64 // start position of each record
}

func (p *pages) newPage() []byte {
	if p.pool != nil {
		return p.pool.GetBytes()
	}
	return make([]byte, pageLen)
}

func (p *pages) write(b []byte) {
	for len(b) > 0 {
		off := int(p.size % pageLen)
		if off == 0 && int(p.size/pageLen) == len(p.data) {
			p.data = append(p.data, p.newPage())
		}
		n := copy(p.data[p.size/pageLen][off:], b)
		b = b[n:]
		p.size += int64(n)
	}
}

func (p *pages) byteAt(pos int64) byte {
	return p.data[pos/pageLen][pos%pageLen]
}

// readAt fills dst with the bytes starting at pos.
func (p *pages) readAt(pos int64, dst []byte) {
	for len(dst) > 0 {
		n := copy(dst, p.data[pos/pageLen][pos%pageLen:])
		dst = dst[n:]
		pos += int64(n)
	}
}

func (p *pages) uvarintAt(pos int64) (uint64, int) {
	var x uint64
	var s uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		b := p.byteAt(pos + int64(i))
		if b < 0x80 {
			return x | uint64(b)<<s, i + 1
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	panic(errors.AssertionFailedf("malformed varint at %d", pos))
}

func (p *pages) checkIndex(i int) {
	if i < 0 || i >= len(p.index) {
		panic(errors.AssertionFailedf("record %d out of range [0,%d)", i, len(p.index)))
	}
}

// Len returns the number of records.
func (p *pages) Len() int {
	return len(p.index)
}

// Size returns the encoded size of all records in bytes.
func (p *pages) Size() int64 {
	return p.size
}

// Release returns the pages to the pool. The store is empty afterwards.
func (p *pages) Release() {
	if p.pool != nil {
		for _, d := range p.data {
			p.pool.PutBytes(d)
		}
	}
	p.data = nil
	p.index = nil
	p.size = 0
}

// Bytes stores variable-length byte records, each prefixed by its uvarint
// length.
type Bytes struct {
	pages
	scratch [binary.MaxVarintLen64]byte
}

// NewBytes returns an empty store drawing pages from pool; a nil pool
// allocates pages directly.
func NewBytes(pool *slab.Pool) *Bytes {
	return &Bytes{pages: pages{pool: pool}}
}

// Add appends a record and returns its index.
func (s *Bytes) Add(b []byte) int {
	s.index = append(s.index, s.size)
	n := binary.PutUvarint(s.scratch[:], uint64(len(b)))
	s.write(s.scratch[:n])
	s.write(b)
	return len(s.index) - 1
}

// RecordLen returns the length of record i.
func (s *Bytes) RecordLen(i int) int {
	s.checkIndex(i)
	l, _ := s.uvarintAt(s.index[i])
	return int(l)
}

// Read copies record i into dst, growing it if needed, and returns it.
func (s *Bytes) Read(i int, dst []byte) []byte {
	s.checkIndex(i)
	l, n := s.uvarintAt(s.index[i])
	if cap(dst) < int(l) {
		dst = make([]byte, l)
	}
	dst = dst[:l]
	s.readAt(s.index[i]+int64(n), dst)
	return dst
}

// VarInts stores variable-length int64 records. A record is its uvarint
// element count followed by the zigzag varint encoding of each element.
type VarInts struct {
	pages
	scratch [binary.MaxVarintLen64]byte
}

// NewVarInts returns an empty store drawing pages from pool; a nil pool
// allocates pages directly.
func NewVarInts(pool *slab.Pool) *VarInts {
	return &VarInts{pages: pages{pool: pool}}
}

// Add appends a record and returns its index.
func (s *VarInts) Add(v []int64) int {
	s.index = append(s.index, s.size)
	n := binary.PutUvarint(s.scratch[:], uint64(len(v)))
	s.write(s.scratch[:n])
	for _, x := range v {
		n = binary.PutVarint(s.scratch[:], x)
		s.write(s.scratch[:n])
	}
	return len(s.index) - 1
}

// Count returns the number of elements in record i.
func (s *VarInts) Count(i int) int {
	s.checkIndex(i)
	c, _ := s.uvarintAt(s.index[i])
	return int(c)
}

// Read decodes record i into dst, growing it if needed, and returns it.
func (s *VarInts) Read(i int, dst []int64) []int64 {
	s.checkIndex(i)
	c, n := s.uvarintAt(s.index[i])
	if cap(dst) < int(c) {
		dst = make([]int64, c)
	}
	dst = dst[:c]
	pos := s.index[i] + int64(n)
	for j := range dst {
		u, m := s.uvarintAt(pos)
		pos += int64(m)
		// zigzag, as written by binary.PutVarint
		x := int64(u >> 1)
		if u&1 != 0 {
			x = ^x
		}
		dst[j] = x
	}
	return dst
}
