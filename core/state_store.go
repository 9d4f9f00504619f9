package core

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// StateStore is the transactional, multi-indexed object database of
// spec.md §4 item 4: primary key uint64 rows plus typed secondary indices,
// copy-on-write via a pebble batch per apply-context, with snapshot and
// rollback. Pebble's naturally ordered key space gives the lowerbound/
// upperbound/next/previous semantics the database iterator API needs
// without hand-rolled tree code, grounded on the pebble wrapper in
// tclemos-pebble-bench's benchmark package.
type StateStore struct {
	db *pebble.DB
}

func OpenStateStore(path string) (*StateStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, wrapChainError(ErrWasmExecution, "open state store", err)
	}
	return &StateStore{db: db}, nil
}

func (s *StateStore) Close() error { return s.db.Close() }

// Tx is a copy-on-write view over the store: every apply-context gets
// exactly one Tx, writes land in a pebble.Batch, and a failed action
// discards the whole batch (spec.md §4.3's created/executing/failed
// lifecycle and §5's "apply-context is the sole mutator" rule).
type Tx struct {
	store *StateStore
	batch *pebble.Batch
}

func (s *StateStore) Begin() *Tx {
	return &Tx{store: s, batch: s.db.NewIndexedBatch()}
}

func (t *Tx) Commit() error {
	return wrapChainError(ErrWasmExecution, "commit state batch", t.batch.Commit(pebble.Sync))
}

func (t *Tx) Rollback() error {
	return t.batch.Close()
}

// primaryKey encodes (code, scope, table, primary_key) in big-endian so that
// lexicographic byte order matches numeric order, letting pebble's native
// iteration serve lowerbound_i64/upperbound_i64/next_i64/previous_i64
// directly.
func primaryKey(code, scope, table AccountName, pk uint64) []byte {
	buf := make([]byte, 1+8+8+8+8)
	buf[0] = 'P'
	binary.BigEndian.PutUint64(buf[1:], uint64(code))
	binary.BigEndian.PutUint64(buf[9:], uint64(scope))
	binary.BigEndian.PutUint64(buf[17:], uint64(table))
	binary.BigEndian.PutUint64(buf[25:], pk)
	return buf
}

func primaryPrefix(code, scope, table AccountName) []byte {
	buf := make([]byte, 1+8+8+8)
	buf[0] = 'P'
	binary.BigEndian.PutUint64(buf[1:], uint64(code))
	binary.BigEndian.PutUint64(buf[9:], uint64(scope))
	binary.BigEndian.PutUint64(buf[17:], uint64(table))
	return buf
}

// TableRow is the row payload stored at a primary key, billed to Payer on
// each mutation that changes its size (spec.md §5's RAM billing rule).
type TableRow struct {
	Payer AccountName
	Blob  []byte
}

func encodeRow(r TableRow) []byte {
	buf := make([]byte, 8+len(r.Blob))
	binary.BigEndian.PutUint64(buf, uint64(r.Payer))
	copy(buf[8:], r.Blob)
	return buf
}

func decodeRow(b []byte) TableRow {
	if len(b) < 8 {
		return TableRow{}
	}
	return TableRow{Payer: AccountName(binary.BigEndian.Uint64(b)), Blob: append([]byte(nil), b[8:]...)}
}

func (t *Tx) StoreRow(code, scope, table AccountName, pk uint64, row TableRow) (ramDelta int, err error) {
	key := primaryKey(code, scope, table, pk)
	if _, closer, err2 := t.batch.Get(key); err2 == nil {
		closer.Close()
		return 0, ErrorWasmExecution("primary key already exists")
	}
	val := encodeRow(row)
	if err := t.batch.Set(key, val, nil); err != nil {
		return 0, wrapChainError(ErrWasmExecution, "store row", err)
	}
	return len(val), nil
}

func (t *Tx) UpdateRow(code, scope, table AccountName, pk uint64, row TableRow) (ramDelta int, err error) {
	key := primaryKey(code, scope, table, pk)
	old, closer, err2 := t.batch.Get(key)
	if err2 != nil {
		return 0, ErrorWasmExecution("update of nonexistent row")
	}
	oldLen := len(old)
	closer.Close()
	val := encodeRow(row)
	if err := t.batch.Set(key, val, nil); err != nil {
		return 0, wrapChainError(ErrWasmExecution, "update row", err)
	}
	return len(val) - oldLen, nil
}

func (t *Tx) RemoveRow(code, scope, table AccountName, pk uint64) (ramDelta int, err error) {
	key := primaryKey(code, scope, table, pk)
	old, closer, err2 := t.batch.Get(key)
	if err2 != nil {
		return 0, ErrorWasmExecution("remove of nonexistent row")
	}
	ramDelta = -len(old)
	closer.Close()
	if err := t.batch.Delete(key, nil); err != nil {
		return 0, wrapChainError(ErrWasmExecution, "remove row", err)
	}
	return ramDelta, nil
}

func (t *Tx) GetRow(code, scope, table AccountName, pk uint64) (TableRow, bool) {
	val, closer, err := t.batch.Get(primaryKey(code, scope, table, pk))
	if err != nil {
		return TableRow{}, false
	}
	defer closer.Close()
	return decodeRow(val), true
}

// RowIterator walks primary rows of one table in key order, backing
// next_i64/previous_i64/lowerbound_i64/upperbound_i64/find_i64.
type RowIterator struct {
	tx                 *Tx
	it                 *pebble.Iterator
	prefix             []byte
	code, scope, table AccountName
	currentPK          uint64
	positioned         bool
}

func (t *Tx) NewRowIterator(code, scope, table AccountName) (*RowIterator, error) {
	prefix := primaryPrefix(code, scope, table)
	upper := upperBoundOf(prefix)
	it, err := t.batch.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, wrapChainError(ErrWasmExecution, "new row iterator", err)
	}
	return &RowIterator{tx: t, it: it, prefix: prefix, code: code, scope: scope, table: table}, nil
}

// GetCurrent returns the row the iterator is positioned on.
func (ri *RowIterator) GetCurrent() (TableRow, uint64, bool) {
	if !ri.positioned {
		return TableRow{}, 0, false
	}
	row, ok := ri.tx.GetRow(ri.code, ri.scope, ri.table, ri.currentPK)
	return row, ri.currentPK, ok
}

// UpdateCurrent mutates the row the iterator is positioned on, billing the
// size delta to payer, per the db_update_i64 semantics of spec.md §4.3.
func (ri *RowIterator) UpdateCurrent(payer AccountName, blob []byte) (int, error) {
	if !ri.positioned {
		return 0, ErrorWasmExecution("db_update_i64: iterator not positioned on a row")
	}
	return ri.tx.UpdateRow(ri.code, ri.scope, ri.table, ri.currentPK, TableRow{Payer: payer, Blob: blob})
}

// RemoveCurrent deletes the row the iterator is positioned on.
func (ri *RowIterator) RemoveCurrent() (AccountName, int, error) {
	if !ri.positioned {
		return 0, 0, ErrorWasmExecution("db_remove_i64: iterator not positioned on a row")
	}
	row, _ := ri.tx.GetRow(ri.code, ri.scope, ri.table, ri.currentPK)
	delta, err := ri.tx.RemoveRow(ri.code, ri.scope, ri.table, ri.currentPK)
	ri.positioned = false
	return row.Payer, delta, err
}

func upperBoundOf(prefix []byte) []byte {
	u := append([]byte(nil), prefix...)
	for i := len(u) - 1; i >= 0; i-- {
		if u[i] != 0xff {
			u[i]++
			return u[:i+1]
		}
	}
	return nil
}

func (ri *RowIterator) Close() error { return ri.it.Close() }

// Find positions the iterator at the row with exactly this primary key.
func (ri *RowIterator) Find(pk uint64) (TableRow, uint64, bool) {
	key := append(append([]byte(nil), ri.prefix...), encodePKSuffix(pk)...)
	if !ri.it.SeekGE(key) || !bytes.Equal(ri.it.Key(), key) {
		ri.positioned = false
		return TableRow{}, 0, false
	}
	ri.positioned, ri.currentPK = true, pk
	return decodeRow(ri.it.Value()), pk, true
}

func (ri *RowIterator) LowerBound(pk uint64) (TableRow, uint64, bool) {
	key := append(append([]byte(nil), ri.prefix...), encodePKSuffix(pk)...)
	if !ri.it.SeekGE(key) {
		ri.positioned = false
		return TableRow{}, 0, false
	}
	found := decodePKSuffix(ri.it.Key())
	ri.positioned, ri.currentPK = true, found
	return decodeRow(ri.it.Value()), found, true
}

func (ri *RowIterator) UpperBound(pk uint64) (TableRow, uint64, bool) {
	row, foundPk, ok := ri.LowerBound(pk)
	if ok && foundPk == pk {
		if !ri.it.Next() {
			ri.positioned = false
			return TableRow{}, 0, false
		}
		found := decodePKSuffix(ri.it.Key())
		ri.positioned, ri.currentPK = true, found
		return decodeRow(ri.it.Value()), found, true
	}
	return row, foundPk, ok
}

func (ri *RowIterator) Next() (TableRow, uint64, bool) {
	if !ri.it.Next() {
		ri.positioned = false
		return TableRow{}, 0, false
	}
	found := decodePKSuffix(ri.it.Key())
	ri.positioned, ri.currentPK = true, found
	return decodeRow(ri.it.Value()), found, true
}

// Previous on the End sentinel yields the greatest element, per spec.md §4.3.
func (ri *RowIterator) Previous() (TableRow, uint64, bool) {
	var ok bool
	if ri.positioned {
		ok = ri.it.Prev()
	} else {
		ok = ri.it.Last()
	}
	if !ok {
		ri.positioned = false
		return TableRow{}, 0, false
	}
	found := decodePKSuffix(ri.it.Key())
	ri.positioned, ri.currentPK = true, found
	return decodeRow(ri.it.Value()), found, true
}

func encodePKSuffix(pk uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, pk)
	return buf
}

func decodePKSuffix(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
