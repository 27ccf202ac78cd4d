package cache

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// TTL is how long a cached response stays valid.
	TTL = time.Hour
	// opTimeout bounds every individual persistent-store operation so a
	// wedged storage engine resolves to a miss instead of hanging callers.
	opTimeout = 3 * time.Second
	// dbFileName is the cache database file under the data directory.
	dbFileName = "responses.db"
)

// corruptionMarkers identify the storage-corruption error class by message
// substring. Seeing any of these latches the service into memory-only mode
// for the rest of the process (and, via the flag file, future processes).
var corruptionMarkers = []string{
	"internal state is undefined",
	"database disk image is malformed",
	"file is not a database",
}

// IsCorruption reports whether err belongs to the storage-corruption error
// class. Matching is by substring on the error text because the storage
// engine does not expose a typed error for this failure.
func IsCorruption(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range corruptionMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// memEntry is a cached response held in the in-memory fallback map.
type memEntry struct {
	response string
	ts       time.Time
}

// Service maps request fingerprints to previously produced responses.
// Entries expire after TTL. Storage starts on the persistent sqlite backend
// and permanently downgrades to an in-memory map once a corruption-class
// error is observed; the downgrade is recorded in a side flag file so a
// fresh process also starts memory-only. Get and Set never return errors:
// every storage failure resolves to a miss or a dropped write.
type Service struct {
	mu         sync.RWMutex
	store      *sqliteStore
	mem        map[string]memEntry
	memoryOnly bool
	dataDir    string
	flag       flagFile
	ttl        time.Duration
	now        func() time.Time
}

// New creates a cache service rooted at dataDir. It never fails: if the
// persistent store cannot be opened, or a prior process latched the
// degraded flag, the service starts in memory-only mode.
func New(dataDir string) *Service {
	s := &Service{
		mem:     make(map[string]memEntry),
		dataDir: dataDir,
		flag:    newFlagFile(dataDir),
		ttl:     TTL,
		now:     time.Now,
	}

	if s.flag.isSet() {
		log.Printf("[cache] degraded flag present, starting in memory-only mode")
		s.memoryOnly = true
		return s
	}

	s.openPersistent()
	return s
}

// openPersistent tries to bring up the sqlite backend and run the startup
// expiry sweep. Failure downgrades to memory-only. Callers hold no locks.
func (s *Service) openPersistent() {
	store, err := openStore(filepath.Join(s.dataDir, dbFileName))
	if err != nil {
		log.Printf("[cache] persistent store unavailable, using memory only: %v", err)
		s.latch(err)
		return
	}

	s.mu.Lock()
	s.store = store
	s.memoryOnly = false
	s.mu.Unlock()

	// Proactively delete expired entries so the store does not grow
	// unbounded between reads.
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if n, err := store.sweep(ctx, s.now().Add(-s.ttl)); err != nil {
		log.Printf("[cache] startup sweep failed: %v", err)
		s.observe(err)
	} else if n > 0 {
		log.Printf("[cache] swept %d expired entries", n)
	}
}

// Get returns the cached response for key if present and not expired.
// Expired entries are evicted on read. Storage errors resolve to a miss.
func (s *Service) Get(ctx context.Context, key string) (string, bool) {
	s.mu.RLock()
	store := s.store
	memoryOnly := s.memoryOnly
	s.mu.RUnlock()

	if memoryOnly || store == nil {
		return s.memGet(key)
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	response, ts, err := store.get(opCtx, key)
	if err != nil {
		if err != errNotFound {
			log.Printf("[cache] get failed for %.24s: %v", key, err)
			s.observe(err)
		}
		return "", false
	}

	if s.expired(ts) {
		delCtx, delCancel := context.WithTimeout(context.Background(), opTimeout)
		defer delCancel()
		if err := store.delete(delCtx, key); err != nil {
			log.Printf("[cache] evicting expired entry failed: %v", err)
			s.observe(err)
		}
		return "", false
	}

	return response, true
}

// Set upserts an entry with the current timestamp. Last write wins.
// Storage errors silently drop the write.
func (s *Service) Set(ctx context.Context, key, prompt, response string) {
	s.mu.RLock()
	store := s.store
	memoryOnly := s.memoryOnly
	s.mu.RUnlock()

	if memoryOnly || store == nil {
		s.memSet(key, response)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := store.put(opCtx, key, prompt, response, s.now()); err != nil {
		log.Printf("[cache] set failed for %.24s: %v", key, err)
		s.observe(err)
	}
}

// ForceMemoryOnlyMode permanently switches the service to the in-memory
// map and records the downgrade in the persisted flag, surviving restart.
// This is the operator escape for a misbehaving storage engine; the latch
// is one-way until ResetErrorStatus.
func (s *Service) ForceMemoryOnlyMode() {
	s.latch(nil)
}

// ResetErrorStatus clears the degraded latch and flag file and retries
// persistent-store initialization. Intended for operators and test
// teardown, not for automatic recovery.
func (s *Service) ResetErrorStatus() {
	if err := s.flag.clear(); err != nil {
		log.Printf("[cache] clearing degraded flag failed: %v", err)
	}

	s.mu.Lock()
	s.memoryOnly = false
	old := s.store
	s.store = nil
	s.mu.Unlock()

	if old != nil {
		old.close()
	}

	s.openPersistent()
}

// MemoryOnly reports whether the service is in degraded memory-only mode.
func (s *Service) MemoryOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryOnly
}

// Entries returns the number of live cache entries, best effort.
func (s *Service) Entries(ctx context.Context) int64 {
	s.mu.RLock()
	store := s.store
	memoryOnly := s.memoryOnly
	s.mu.RUnlock()

	if memoryOnly || store == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return int64(len(s.mem))
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	n, err := store.count(opCtx)
	if err != nil {
		s.observe(err)
		return 0
	}
	return n
}

// Clear removes every cache entry from whichever backend is active.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	s.mem = make(map[string]memEntry)
	store := s.store
	memoryOnly := s.memoryOnly
	s.mu.Unlock()

	if memoryOnly || store == nil {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := store.clear(opCtx); err != nil {
		log.Printf("[cache] clear failed: %v", err)
		s.observe(err)
	}
}

// Close releases the persistent backend if open.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.close()
	s.store = nil
	return err
}

// observe checks a storage error against the corruption class and latches
// memory-only mode when it matches.
func (s *Service) observe(err error) {
	if IsCorruption(err) {
		log.Printf("[cache] corruption-class error, latching memory-only mode: %v", err)
		s.latch(err)
	}
}

// latch performs the one-way downgrade to memory-only mode.
func (s *Service) latch(cause error) {
	reason := "forced"
	if cause != nil {
		reason = cause.Error()
	}
	if err := s.flag.set(reason); err != nil {
		log.Printf("[cache] persisting degraded flag failed: %v", err)
	}

	s.mu.Lock()
	old := s.store
	s.store = nil
	s.memoryOnly = true
	s.mu.Unlock()

	if old != nil {
		old.close()
	}
}

func (s *Service) expired(ts time.Time) bool {
	return s.now().Sub(ts) > s.ttl
}

func (s *Service) memGet(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.mem[key]
	if !ok {
		return "", false
	}
	if s.expired(e.ts) {
		delete(s.mem, key)
		return "", false
	}
	return e.response, true
}

func (s *Service) memSet(key, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[key] = memEntry{response: response, ts: s.now()}
}
