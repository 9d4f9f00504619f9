package core

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/cockroachdb/pebble"
)

// IndexKind replaces the template-heavy index_set walking of the source
// with a closed enum and a match on variants, per spec.md §9.
type IndexKind byte

const (
	IndexU64 IndexKind = iota
	IndexU128
	IndexU128Pair
	IndexF64
	IndexF128
)

// secondaryKey encodes (kind, code, scope, table, secondary value, primary
// key) so that pebble's lexicographic order matches the numeric order of
// the secondary value for every kind, including the two float kinds which
// need their IEEE-754 bit pattern transformed first.
func secondaryKey(kind IndexKind, code, scope, table AccountName, secondary []byte, pk uint64) []byte {
	buf := make([]byte, 0, 1+1+8+8+8+len(secondary)+8)
	buf = append(buf, 'S', byte(kind))
	buf = appendUint64(buf, uint64(code))
	buf = appendUint64(buf, uint64(scope))
	buf = appendUint64(buf, uint64(table))
	buf = append(buf, secondary...)
	buf = appendUint64(buf, pk)
	return buf
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func secondaryPrefix(kind IndexKind, code, scope, table AccountName) []byte {
	buf := make([]byte, 0, 1+1+24)
	buf = append(buf, 'S', byte(kind))
	buf = appendUint64(buf, uint64(code))
	buf = appendUint64(buf, uint64(scope))
	buf = appendUint64(buf, uint64(table))
	return buf
}

// orderPreservingU64 is the identity for unsigned values: big-endian bytes
// already sort correctly.
func orderPreservingU64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func orderPreservingU128(hi, lo uint64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], hi)
	binary.BigEndian.PutUint64(buf[8:], lo)
	return buf
}

// orderPreservingF64 flips the sign bit for non-negative values and inverts
// every bit for negative values, the standard IEEE-754 total-order
// transform, so that byte-lexicographic order equals numeric order. This is
// the explicit byte-level transmutation helper called for by the design
// note in spec.md §9, replacing an unsafe reinterpret cast.
func orderPreservingF64(f float64) ([]byte, error) {
	if math.IsNaN(f) {
		return nil, ErrorWasmExecution("secondary float index rejects NaN")
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf, nil
}

func orderPreservingF128(f F128) ([]byte, error) {
	if f.isNaN() {
		return nil, ErrorWasmExecution("secondary float index rejects NaN")
	}
	b := f.Bytes()
	// b is little-endian per F128's guest memory convention; reverse to
	// big-endian then apply the same sign transform on the top byte.
	out := make([]byte, 16)
	for i := 0; i < 16; i++ {
		out[i] = b[15-i]
	}
	if out[0]&0x80 != 0 {
		for i := range out {
			out[i] = ^out[i]
		}
	} else {
		out[0] |= 0x80
	}
	return out, nil
}

func (t *Tx) InsertSecondary(kind IndexKind, code, scope, table AccountName, secondary []byte, pk uint64) error {
	key := secondaryKey(kind, code, scope, table, secondary, pk)
	return wrapChainError(ErrWasmExecution, "insert secondary index", t.batch.Set(key, nil, nil))
}

func (t *Tx) RemoveSecondary(kind IndexKind, code, scope, table AccountName, secondary []byte, pk uint64) error {
	key := secondaryKey(kind, code, scope, table, secondary, pk)
	return wrapChainError(ErrWasmExecution, "remove secondary index", t.batch.Delete(key, nil))
}

// SecondaryIterator walks one secondary index in value order, backing
// db_<kind>_find_secondary/lowerbound/upperbound/end/next/previous for all
// five IndexKind variants (spec.md §4.3).
type SecondaryIterator struct {
	it         *pebble.Iterator
	prefix     []byte
	positioned bool
}

func (t *Tx) NewSecondaryIterator(kind IndexKind, code, scope, table AccountName) (*SecondaryIterator, error) {
	prefix := secondaryPrefix(kind, code, scope, table)
	it, err := t.batch.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBoundOf(prefix)})
	if err != nil {
		return nil, wrapChainError(ErrWasmExecution, "new secondary iterator", err)
	}
	return &SecondaryIterator{it: it, prefix: prefix}, nil
}

func (si *SecondaryIterator) Close() error { return si.it.Close() }

func (si *SecondaryIterator) valueAt(key []byte) []byte {
	return key[len(si.prefix) : len(key)-8]
}

func (si *SecondaryIterator) seekKey(value []byte) []byte {
	return append(append([]byte(nil), si.prefix...), value...)
}

// Find positions the iterator at the row (smallest primary key among ties)
// whose secondary value exactly matches value.
func (si *SecondaryIterator) Find(value []byte) (uint64, bool) {
	if !si.it.SeekGE(si.seekKey(value)) || !bytes.Equal(si.valueAt(si.it.Key()), value) {
		si.positioned = false
		return 0, false
	}
	si.positioned = true
	return decodePKSuffix(si.it.Key()), true
}

// LowerBound positions the iterator at the first row whose secondary value
// is greater than or equal to value.
func (si *SecondaryIterator) LowerBound(value []byte) (uint64, bool) {
	if !si.it.SeekGE(si.seekKey(value)) {
		si.positioned = false
		return 0, false
	}
	si.positioned = true
	return decodePKSuffix(si.it.Key()), true
}

// UpperBound positions the iterator at the first row whose secondary value
// is strictly greater than value.
func (si *SecondaryIterator) UpperBound(value []byte) (uint64, bool) {
	if !si.it.SeekGE(si.seekKey(value)) {
		si.positioned = false
		return 0, false
	}
	for bytes.Equal(si.valueAt(si.it.Key()), value) {
		if !si.it.Next() {
			si.positioned = false
			return 0, false
		}
	}
	si.positioned = true
	return decodePKSuffix(si.it.Key()), true
}

func (si *SecondaryIterator) Next() (uint64, bool) {
	var ok bool
	if si.positioned {
		ok = si.it.Next()
	} else {
		ok = si.it.First()
	}
	if !ok {
		si.positioned = false
		return 0, false
	}
	si.positioned = true
	return decodePKSuffix(si.it.Key()), true
}

// Previous on the end sentinel (an iterator never positioned by Find/
// LowerBound/UpperBound) yields the greatest element, matching
// RowIterator.Previous's convention for db_end_i64/db_previous_i64.
func (si *SecondaryIterator) Previous() (uint64, bool) {
	var ok bool
	if si.positioned {
		ok = si.it.Prev()
	} else {
		ok = si.it.Last()
	}
	if !ok {
		si.positioned = false
		return 0, false
	}
	si.positioned = true
	return decodePKSuffix(si.it.Key()), true
}
