package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	forgefs "github.com/farm-framework/forge/internal/adapters/fs"
	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/farm-framework/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ResultCache = (*Store)(nil)

// evictTargetRatio is the hysteresis bound for cleanup: eviction runs until
// total size is at or below this fraction of the configured maximum, so a
// cache sitting right at the boundary does not thrash.
const evictTargetRatio = 0.8

const indexFilename = "index.json"

// Entry is the cache's bookkeeping record for one key. The cached result and
// artifact payloads live under a directory named by the key.
type Entry struct {
	Key          string    `json:"key"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	SizeBytes    int64     `json:"size_bytes"`
}

// record is the on-disk result metadata: the task result plus the
// store-relative payload path per artifact.
type record struct {
	Result   *domain.TaskResult `json:"result"`
	Payloads []string           `json:"payloads"`
}

// Store is an on-disk content-addressable result cache bounded by total size
// and entry age. Any corruption is recovered locally by treating the affected
// key as a miss and purging it; the cache never surfaces a build-breaking error
// from its read path.
type Store struct {
	dir     string
	maxSize int64
	ttl     time.Duration
	logger  ports.Logger
	keyer   *Keyer

	mu    sync.Mutex
	index map[string]Entry
}

// NewStore opens (or creates) the cache at dir. An unreadable index is
// discarded and rebuilt empty rather than reported as an error.
func NewStore(dir string, maxSize int64, ttl time.Duration, keyer *Keyer, logger ports.Logger) (*Store, error) {
	s := &Store{
		dir:     filepath.Clean(dir),
		maxSize: maxSize,
		ttl:     ttl,
		logger:  logger,
		keyer:   keyer,
		index:   make(map[string]Entry),
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create cache directory")
	}
	s.loadIndex()
	return s, nil
}

// Key computes the deterministic cache key for a task.
func (s *Store) Key(task *domain.BuildTask) (string, error) {
	return s.keyer.Key(task)
}

// Get returns the cached result for key, restoring every artifact payload to
// its recorded path. Returns false on any miss: unknown key, expired entry,
// unreadable metadata, or a dangling payload. Stale entries are purged as a
// side effect and the read never fails the build.
func (s *Store) Get(key string) (*domain.TaskResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.index[key]
	if !ok {
		return nil, false
	}

	if s.ttl > 0 && time.Since(entry.CreatedAt) > s.ttl {
		s.purgeLocked(key)
		return nil, false
	}

	rec, err := s.readRecord(key)
	if err != nil {
		s.logger.Warn("cache entry unreadable, purging: " + err.Error())
		s.purgeLocked(key)
		return nil, false
	}

	// Verify and restore every payload before reporting a hit. A dangling
	// payload invalidates the whole entry.
	for i, art := range rec.Result.Artifacts {
		payload := filepath.Join(s.dir, key, rec.Payloads[i])
		if _, statErr := os.Stat(payload); statErr != nil {
			s.logger.Warn("cache payload missing, purging entry for key " + key)
			s.purgeLocked(key)
			return nil, false
		}
		if copyErr := forgefs.CopyTree(payload, art.Path); copyErr != nil {
			s.logger.Warn("cache restore failed, purging: " + copyErr.Error())
			s.purgeLocked(key)
			return nil, false
		}
	}

	entry.LastAccessed = time.Now()
	s.index[key] = entry
	s.saveIndexLocked()

	return rec.Result, true
}

// Put persists the result metadata plus a copy of every artifact payload
// under a key-scoped directory, then triggers eviction if the store grew past
// its size bound.
func (s *Store) Put(key string, result *domain.TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryDir := filepath.Join(s.dir, key)
	if err := os.RemoveAll(entryDir); err != nil {
		return zerr.Wrap(err, "failed to reset cache entry directory")
	}

	rec := record{Result: result, Payloads: make([]string, len(result.Artifacts))}
	var size int64
	for i, art := range result.Artifacts {
		rel := filepath.Join("artifacts", payloadRel(art.Path))
		rec.Payloads[i] = rel
		if err := forgefs.CopyTree(art.Path, filepath.Join(entryDir, rel)); err != nil {
			_ = os.RemoveAll(entryDir)
			return zerr.Wrap(err, "failed to copy artifact payload")
		}
		payloadSize, err := forgefs.TreeSize(filepath.Join(entryDir, rel))
		if err == nil {
			size += payloadSize
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		_ = os.RemoveAll(entryDir)
		return zerr.Wrap(err, "failed to marshal cache record")
	}
	if err := os.WriteFile(filepath.Join(entryDir, "result.json"), data, 0o644); err != nil { //nolint:gosec // cache metadata
		_ = os.RemoveAll(entryDir)
		return zerr.Wrap(err, "failed to write cache record")
	}
	size += int64(len(data))

	now := time.Now()
	s.index[key] = Entry{
		Key:          key,
		CreatedAt:    now,
		LastAccessed: now,
		SizeBytes:    size,
	}
	s.saveIndexLocked()

	if s.totalSizeLocked() > s.maxSize {
		s.cleanupLocked()
	}
	return nil
}

// Cleanup purges entries past their time-to-live, then evicts
// least-recently-used entries until total size is at or below 80% of the
// configured maximum.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
	return nil
}

// Clear removes every entry and payload.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.index {
		_ = os.RemoveAll(filepath.Join(s.dir, key))
	}
	s.index = make(map[string]Entry)
	s.saveIndexLocked()
	return nil
}

// TotalSize returns the current total size of all entries in bytes.
func (s *Store) TotalSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSizeLocked()
}

// Entries returns a snapshot of the current index, for inspection.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.index))
	for _, e := range s.index {
		entries = append(entries, e)
	}
	return entries
}

func (s *Store) cleanupLocked() {
	expired := s.purgeExpiredLocked()

	target := int64(float64(s.maxSize) * evictTargetRatio)
	total := s.totalSizeLocked()
	if total <= target {
		if expired {
			s.saveIndexLocked()
		}
		return
	}

	entries := make([]Entry, 0, len(s.index))
	for _, e := range s.index {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return a.LastAccessed.Compare(b.LastAccessed)
	})

	for _, e := range entries {
		if total <= target {
			break
		}
		// Drop the index entry first so a failed payload removal cannot leave
		// a referenced-but-untracked entry; an orphaned directory is cleaned
		// up by a later Put under the same key.
		delete(s.index, e.Key)
		_ = os.RemoveAll(filepath.Join(s.dir, e.Key))
		total -= e.SizeBytes
	}
	s.saveIndexLocked()
}

// purgeExpiredLocked drops every entry past its time-to-live. Expiry is also
// checked per key in Get; this sweep catches entries that aged out without
// being read again.
func (s *Store) purgeExpiredLocked() bool {
	if s.ttl <= 0 {
		return false
	}

	now := time.Now()
	purged := false
	for key, e := range s.index {
		if now.Sub(e.CreatedAt) > s.ttl {
			delete(s.index, key)
			_ = os.RemoveAll(filepath.Join(s.dir, key))
			purged = true
		}
	}
	return purged
}

func (s *Store) totalSizeLocked() int64 {
	var total int64
	for _, e := range s.index {
		total += e.SizeBytes
	}
	return total
}

// purgeLocked drops the index entry and its payload directory.
func (s *Store) purgeLocked(key string) {
	delete(s.index, key)
	_ = os.RemoveAll(filepath.Join(s.dir, key))
	s.saveIndexLocked()
}

func (s *Store) readRecord(key string) (*record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key, "result.json")) //nolint:gosec // key-scoped path inside cache dir
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read cache record")
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal cache record")
	}
	if rec.Result == nil || len(rec.Payloads) != len(rec.Result.Artifacts) {
		return nil, zerr.New("cache record is inconsistent")
	}
	return &rec, nil
}

func (s *Store) loadIndex() {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFilename)) //nolint:gosec // path inside cache dir
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cache index unreadable, starting empty: " + err.Error())
		}
		return
	}
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, &s.index); err != nil {
		s.logger.Warn("cache index corrupt, starting empty: " + err.Error())
		s.index = make(map[string]Entry)
	}
}

// saveIndexLocked persists the index best-effort; a failed write degrades the
// cache, it does not fail the build.
func (s *Store) saveIndexLocked() {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		s.logger.Warn("failed to marshal cache index: " + err.Error())
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, indexFilename), data, 0o644); err != nil { //nolint:gosec // cache metadata
		s.logger.Warn("failed to write cache index: " + err.Error())
	}
}

// payloadRel turns an artifact path into a store-relative payload path,
// stripping anything that would escape the key-scoped directory.
func payloadRel(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	clean = strings.TrimPrefix(clean, "/")
	parts := strings.Split(clean, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == ".." || p == "." || p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return filepath.Join(kept...)
}
