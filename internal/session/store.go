package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
)

// ErrConsistency is returned when an extend targets a key whose stored
// mapping points at a different store. Surfaced, never silently corrected:
// it prevents mixing file sets across stores.
var ErrConsistency = errors.New("session cache consistency error")

// document is the on-disk shape of the cache file. The field names are part
// of the format and must not be repurposed across versions; session_order is
// an additive field (JSON objects do not preserve insertion order in Go).
type document struct {
	Sessions      map[string]string   `json:"sessions"`
	FilesPerStore map[string][]string `json:"files_per_vs"`
	Last          string              `json:"_last"`
	Order         []string            `json:"session_order,omitempty"`
}

// SessionInfo is one row of the list view.
type SessionInfo struct {
	Key       string
	StoreID   string
	FileCount int
	LastUsed  bool
}

// Store holds the session cache in memory. Commands open it once, mutate it,
// and flush with a single Save at the end; nothing is persisted mid-batch.
type Store struct {
	path string
	doc  document
}

func emptyDocument() document {
	return document{
		Sessions:      map[string]string{},
		FilesPerStore: map[string][]string{},
	}
}

// Open loads the cache file at path, synthesizing an empty store when the
// file is absent or unparsable (matching how earlier releases behaved).
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("cannot read cache file %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return s, nil
	}

	if _, hasSessions := raw["sessions"]; hasSessions {
		return s, s.loadCurrent(data)
	}
	if _, hasFiles := raw["files_per_vs"]; hasFiles {
		return s, s.loadCurrent(data)
	}
	s.loadLegacy(raw)
	return s, nil
}

func (s *Store) loadCurrent(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil // unparsable body, keep the empty store
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]string{}
	}
	if doc.FilesPerStore == nil {
		doc.FilesPerStore = map[string][]string{}
	}
	s.doc = doc
	s.repairOrder()
	return nil
}

// loadLegacy reads the original flat format: {"/path": "vs_...", "_last": id}.
func (s *Store) loadLegacy(raw map[string]json.RawMessage) {
	for k, v := range raw {
		if k == "_last" {
			_ = json.Unmarshal(v, &s.doc.Last)
			continue
		}
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		var id string
		if err := json.Unmarshal(v, &id); err == nil && id != "" {
			s.doc.Sessions[k] = id
		}
	}
	s.repairOrder()
}

// repairOrder makes session_order consistent with the sessions map: entries
// for vanished keys are dropped and keys missing from the order (legacy
// documents, hand-edited files) are appended in sorted order so list output
// stays deterministic.
func (s *Store) repairOrder() {
	seen := make(map[string]bool, len(s.doc.Order))
	order := s.doc.Order[:0]
	for _, k := range s.doc.Order {
		if _, ok := s.doc.Sessions[k]; ok && !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	var missing []string
	for k := range s.doc.Sessions {
		if !seen[k] {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	s.doc.Order = append(order, missing...)
}

// Path returns the cache file location, shown by the list command.
func (s *Store) Path() string { return s.path }

// Lookup returns the store id recorded for key.
func (s *Store) Lookup(key string) (string, bool) {
	id, ok := s.doc.Sessions[key]
	return id, ok
}

// LookupLast returns the most recently created-or-extended store id.
func (s *Store) LookupLast() (string, bool) {
	if s.doc.Last == "" {
		return "", false
	}
	return s.doc.Last, true
}

// RecordNew inserts or overwrites the session record for key and sets the
// last-used pointer. It reports the previous id when the key was already
// mapped, so the caller can warn about the re-index; the old id's file
// membership survives because it is keyed by id, not by key.
func (s *Store) RecordNew(key, id string) (previous string, overwrote bool) {
	previous, overwrote = s.doc.Sessions[key]
	s.doc.Sessions[key] = id
	if !overwrote {
		s.doc.Order = append(s.doc.Order, key)
	}
	s.doc.Last = id
	return previous, overwrote
}

// RecordExtend unions files into the membership set of id and updates the
// last-used pointer. The key must already map to id; any other stored
// mapping is a consistency error and leaves the cache unchanged.
func (s *Store) RecordExtend(key, id string, files []string) error {
	stored, ok := s.doc.Sessions[key]
	if !ok {
		return fmt.Errorf("%w: key %q is not recorded", ErrConsistency, key)
	}
	if stored != id {
		return fmt.Errorf("%w: key %q maps to %s, not %s", ErrConsistency, key, stored, id)
	}
	s.AddFiles(id, files)
	s.doc.Last = id
	return nil
}

// AddFiles adds absolute file paths to the membership set for id.
// The set only ever grows; overlapping adds are idempotent.
func (s *Store) AddFiles(id string, files []string) {
	set := make(map[string]bool, len(s.doc.FilesPerStore[id])+len(files))
	for _, p := range s.doc.FilesPerStore[id] {
		set[p] = true
	}
	for _, p := range files {
		if !filepath.IsAbs(p) {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
		}
		set[p] = true
	}
	combined := make([]string, 0, len(set))
	for p := range set {
		combined = append(combined, p)
	}
	sort.Strings(combined)
	s.doc.FilesPerStore[id] = combined
}

// MarkUsed sets the last-used pointer without touching any session record.
// Used when an extend was addressed by explicit id or auto, where no
// canonical key exists to re-record.
func (s *Store) MarkUsed(id string) {
	s.doc.Last = id
}

// IndexedFiles returns the membership set for id.
func (s *Store) IndexedFiles(id string) map[string]bool {
	out := make(map[string]bool, len(s.doc.FilesPerStore[id]))
	for _, p := range s.doc.FilesPerStore[id] {
		out[p] = true
	}
	return out
}

// Sessions returns all session records in the order they were first
// recorded, annotated with membership size and the last-used marker.
func (s *Store) Sessions() []SessionInfo {
	out := make([]SessionInfo, 0, len(s.doc.Order))
	for _, key := range s.doc.Order {
		id := s.doc.Sessions[key]
		out = append(out, SessionInfo{
			Key:       key,
			StoreID:   id,
			FileCount: len(s.doc.FilesPerStore[id]),
			LastUsed:  id == s.doc.Last && s.doc.Last != "",
		})
	}
	return out
}

// Save rewrites the whole cache file atomically: marshal, write to a temp
// file in the same directory, rename over the old version. A crash mid-write
// never corrupts the prior file. A short flock serializes the rename against
// another finishing process; reads stay lock-free and the overall
// read-modify-write cycle remains last-writer-wins.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal cache: %w", err)
	}
	data = append(data, '\n')

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("cannot lock cache file %s: %w", s.path, err)
	}
	defer lock.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".rag_vector_stores-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot install cache file %s: %w", s.path, err)
	}
	return nil
}
