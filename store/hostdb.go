package store

import (
	"errors"
	"fmt"

	dbm "github.com/tendermint/tm-db"
)

var (
	errKeyEmpty      = errors.New("key cannot be empty")
	errValueNil      = errors.New("value cannot be nil")
	errBatchFinished = errors.New("batch has been written or closed")
)

// StateStore is the key-value capability of a host ledger. GetState returns
// nil for a missing key. GetStateByRange iterates keys in ascending order
// from start inclusive to end exclusive; an empty end means no upper bound.
type StateStore interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	DelState(key string) error
	GetStateByRange(start, end string) (StateIterator, error)
}

// StateIterator walks the result of a range query.
type StateIterator interface {
	HasNext() bool
	Next() (key string, value []byte, err error)
	Close() error
}

var _ dbm.DB = (*HostDB)(nil)

// HostDB lets a Store keep its versions in the state of a host ledger instead
// of a local database.
type HostDB struct {
	state StateStore
}

func NewHostDB(state StateStore) *HostDB {
	return &HostDB{state: state}
}

func (db *HostDB) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errKeyEmpty
	}
	return db.state.GetState(string(key))
}

func (db *HostDB) Has(key []byte) (bool, error) {
	v, err := db.Get(key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (db *HostDB) Set(key, value []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	if value == nil {
		return errValueNil
	}
	return db.state.PutState(string(key), value)
}

func (db *HostDB) SetSync(key, value []byte) error {
	return db.Set(key, value)
}

func (db *HostDB) Delete(key []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	return db.state.DelState(string(key))
}

func (db *HostDB) DeleteSync(key []byte) error {
	return db.Delete(key)
}

func (db *HostDB) Iterator(start, end []byte) (dbm.Iterator, error) {
	if (start != nil && len(start) == 0) || (end != nil && len(end) == 0) {
		return nil, errKeyEmpty
	}
	qi, err := db.state.GetStateByRange(string(start), string(end))
	if err != nil {
		return nil, err
	}
	return newHostIterator(start, end, qi), nil
}

// ReverseIterator reads the whole range, since host ledgers only scan forward.
func (db *HostDB) ReverseIterator(start, end []byte) (dbm.Iterator, error) {
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var items []kvPair
	for ; it.Valid(); it.Next() {
		items = append(items, kvPair{key: it.Key(), value: it.Value()})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return &sliceIterator{start: start, end: end, items: items}, nil
}

func (db *HostDB) Close() error {
	return nil
}

func (db *HostDB) NewBatch() dbm.Batch {
	return &hostBatch{db: db}
}

func (db *HostDB) Print() error {
	it, err := db.Iterator(nil, nil)
	if err != nil {
		return err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		fmt.Printf("[%X]:\t[%X]\n", it.Key(), it.Value())
	}
	return it.Error()
}

func (db *HostDB) Stats() map[string]string {
	return map[string]string{"database.type": "hostDB"}
}

type kvPair struct {
	key   []byte
	value []byte
	del   bool
}

// hostBatch buffers writes until Write. Host ledgers apply the writes of a
// transaction together, so Write and WriteSync are the same.
type hostBatch struct {
	db  *HostDB
	ops []kvPair
	// set once written or closed
	done bool
}

func (b *hostBatch) Set(key, value []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	if value == nil {
		return errValueNil
	}
	if b.done {
		return errBatchFinished
	}
	b.ops = append(b.ops, kvPair{key: key, value: value})
	return nil
}

func (b *hostBatch) Delete(key []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	if b.done {
		return errBatchFinished
	}
	b.ops = append(b.ops, kvPair{key: key, del: true})
	return nil
}

func (b *hostBatch) Write() error {
	if b.done {
		return errBatchFinished
	}
	for _, op := range b.ops {
		var err error
		if op.del {
			err = b.db.Delete(op.key)
		} else {
			err = b.db.Set(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	return b.Close()
}

func (b *hostBatch) WriteSync() error {
	return b.Write()
}

func (b *hostBatch) Close() error {
	b.ops = nil
	b.done = true
	return nil
}

var _ dbm.Iterator = (*hostIterator)(nil)

type hostIterator struct {
	start []byte
	end   []byte

	qi      StateIterator
	current kvPair
	valid   bool
	err     error
}

func newHostIterator(start, end []byte, qi StateIterator) *hostIterator {
	iter := &hostIterator{start: start, end: end, qi: qi, valid: true}
	iter.Next()
	return iter
}

func (iter *hostIterator) Domain() ([]byte, []byte) {
	return iter.start, iter.end
}

func (iter *hostIterator) Valid() bool {
	return iter.valid
}

func (iter *hostIterator) Next() {
	if !iter.valid {
		panic("iterator is invalid")
	}
	if !iter.qi.HasNext() {
		iter.valid = false
		return
	}
	key, value, err := iter.qi.Next()
	if err != nil {
		iter.err = err
		iter.valid = false
		return
	}
	iter.current = kvPair{key: []byte(key), value: value}
}

func (iter *hostIterator) Key() []byte {
	iter.assertValid()
	return iter.current.key
}

func (iter *hostIterator) Value() []byte {
	iter.assertValid()
	return iter.current.value
}

func (iter *hostIterator) Error() error {
	return iter.err
}

func (iter *hostIterator) Close() error {
	return iter.qi.Close()
}

func (iter *hostIterator) assertValid() {
	if !iter.valid {
		panic("iterator is invalid")
	}
}

// sliceIterator iterates over materialized items.
type sliceIterator struct {
	start []byte
	end   []byte
	items []kvPair
}

func (iter *sliceIterator) Domain() ([]byte, []byte) {
	return iter.start, iter.end
}

func (iter *sliceIterator) Valid() bool {
	return len(iter.items) > 0
}

func (iter *sliceIterator) Next() {
	if !iter.Valid() {
		panic("iterator is invalid")
	}
	iter.items = iter.items[1:]
}

func (iter *sliceIterator) Key() []byte {
	if !iter.Valid() {
		panic("iterator is invalid")
	}
	return iter.items[0].key
}

func (iter *sliceIterator) Value() []byte {
	if !iter.Valid() {
		panic("iterator is invalid")
	}
	return iter.items[0].value
}

func (iter *sliceIterator) Error() error {
	return nil
}

func (iter *sliceIterator) Close() error {
	return nil
}
