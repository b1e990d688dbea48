package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketHistory = []byte("history")
)

// historyEntry is the value stored per query
type historyEntry struct {
	Query    string `json:"query"`
	LastUsed int64  `json:"last_used"` // unix nanoseconds
	Count    int    `json:"count"`
}

// HistoryStore implements domain.HistoryStore using BoltDB.
// Only submitted query strings are stored, never results.
type HistoryStore struct {
	db         *bolt.DB
	maxEntries int
	now        func() time.Time

	mu sync.Mutex
	// last stamp handed out, keeps Add order strict on coarse clocks
	last int64
	// memory-only mode when db is nil
	mem map[string]historyEntry
}

// NewHistoryStore opens (or creates) history.db under dir.
// An empty dir gives a memory-only store.
func NewHistoryStore(dir string, maxEntries int) (*HistoryStore, error) {
	s := &HistoryStore{
		maxEntries: maxEntries,
		now:        time.Now,
		mem:        make(map[string]historyEntry),
	}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHistory)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// key normalises a query so "Cats" and "cats " share one entry
func key(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Add records query as the most recent search
func (s *HistoryStore) Add(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	k := key(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixNano()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now

	if s.db == nil {
		e := s.mem[k]
		s.mem[k] = historyEntry{Query: query, LastUsed: now, Count: e.Count + 1}
		s.trimMem()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)

		var e historyEntry
		if v := b.Get([]byte(k)); v != nil {
			// A corrupt entry is simply overwritten
			_ = json.Unmarshal(v, &e)
		}
		e = historyEntry{Query: query, LastUsed: now, Count: e.Count + 1}

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(k), data); err != nil {
			return err
		}
		return trimBucket(b, s.maxEntries)
	})
}

// Recent returns up to limit queries, newest first. limit <= 0 returns all.
func (s *HistoryStore) Recent(limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []historyEntry
	if s.db == nil {
		for _, e := range s.mem {
			entries = append(entries, e)
		}
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			var err error
			entries, err = readEntries(tx.Bucket(bucketHistory))
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	sortNewestFirst(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	queries := make([]string, len(entries))
	for i, e := range entries {
		queries[i] = e.Query
	}
	return queries, nil
}

// Remove deletes a single query from the history
func (s *HistoryStore) Remove(query string) error {
	k := key(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		delete(s.mem, k)
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHistory).Delete([]byte(k))
	})
}

// Clear wipes the whole history
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem = make(map[string]historyEntry)
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketHistory); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketHistory)
		return err
	})
}

// readEntries decodes every entry in b, skipping corrupt values
func readEntries(b *bolt.Bucket) ([]historyEntry, error) {
	var entries []historyEntry
	err := b.ForEach(func(_, v []byte) error {
		var e historyEntry
		if json.Unmarshal(v, &e) == nil && e.Query != "" {
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

// trimBucket deletes the oldest entries beyond limit (limit <= 0 keeps everything)
func trimBucket(b *bolt.Bucket, limit int) error {
	if limit <= 0 {
		return nil
	}
	entries, err := readEntries(b)
	if err != nil || len(entries) <= limit {
		return err
	}
	sortNewestFirst(entries)
	for _, e := range entries[limit:] {
		if err := b.Delete([]byte(key(e.Query))); err != nil {
			return err
		}
	}
	return nil
}

func (s *HistoryStore) trimMem() {
	if s.maxEntries <= 0 || len(s.mem) <= s.maxEntries {
		return
	}
	entries := make([]historyEntry, 0, len(s.mem))
	for _, e := range s.mem {
		entries = append(entries, e)
	}
	sortNewestFirst(entries)
	for _, e := range entries[s.maxEntries:] {
		delete(s.mem, key(e.Query))
	}
}

func sortNewestFirst(entries []historyEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].LastUsed != entries[j].LastUsed {
			return entries[i].LastUsed > entries[j].LastUsed
		}
		return entries[i].Query < entries[j].Query
	})
}
