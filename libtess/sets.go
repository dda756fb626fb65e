package libtess

import "github.com/dgraph-io/badger/v3"

// PrimSet tracks canonical primitive encodings already emitted during a
// tessellation pass, so a cell listed more than once in the input does not
// duplicate output primitives.
type PrimSet interface {

	// TryAdd adds the given canonical encoding if it is not already present.
	//
	// If the encoding is already in this PrimSet, this call has no effect and
	// TryAdd() returns false.  Otherwise a copy of the encoding is added and
	// TryAdd() returns true.
	//
	// After one or more calls to TryAdd(), call Close() for cleanup.
	TryAdd(key []byte) bool

	// Close removes all previously added items from this set.
	Close()
}

// NewPrimSet returns an empty, pass-scoped PrimSet.
func NewPrimSet() PrimSet {
	return &lsmSet{}
}

type lsmSet struct {
	db *badger.DB
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *lsmSet) TryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Commit()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}

	if err != nil {
		panic(err)
	}

	return added
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
