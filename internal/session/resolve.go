package session

import (
	"errors"
	"fmt"
)

// ErrNoLastStore is returned for an auto reference on a cache with no
// last-used pointer.
var ErrNoLastStore = errors.New("no vector store in cache")

// ErrNotIndexed is returned when a path or glob reference has no session
// record and creation was not requested.
var ErrNotIndexed = errors.New("not indexed yet")

// Resolver turns a user reference into a remote store id, using the cache.
// When CreateMissing is set, an unknown path/glob reference triggers index
// creation instead of failing; index wires an ingestion run in here, while
// ask, chat and extend leave it nil.
type Resolver struct {
	Store *Store

	// CreateMissing is invoked with the raw reference and its canonical key.
	// It must create and record the store, returning the new id.
	CreateMissing func(reference, key string) (string, error)
}

// Resolve maps reference to a store id. The auto sentinel dereferences the
// last-used pointer; an explicit vs_ id is trusted and passed through; a
// path or glob is canonicalized and looked up.
func (r *Resolver) Resolve(reference string) (string, error) {
	ref, err := Classify(reference)
	if err != nil {
		return "", err
	}

	switch ref.Kind {
	case RefAuto:
		id, ok := r.Store.LookupLast()
		if !ok {
			return "", fmt.Errorf("%w\n  Run first:\n    rag-cli index PATH_OR_GLOB", ErrNoLastStore)
		}
		return id, nil

	case RefStoreID:
		return ref.ID, nil

	default:
		if id, ok := r.Store.Lookup(ref.Key); ok {
			return id, nil
		}
		if r.CreateMissing != nil {
			return r.CreateMissing(reference, ref.Key)
		}
		return "", fmt.Errorf("%w for key:\n  %s\nIndex it first with:\n  rag-cli index %q", ErrNotIndexed, ref.Key, reference)
	}
}
