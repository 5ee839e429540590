// Package watch monitors the inbox directory for session result files
// and runs each through the import pipeline: parse, re-score, store,
// archive.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/peterachavez/focus-flicker-beta-f/internal/config"
	"github.com/peterachavez/focus-flicker-beta-f/internal/export"
	"github.com/peterachavez/focus-flicker-beta-f/internal/intake"
	"github.com/peterachavez/focus-flicker-beta-f/internal/store"
)

// settleDelay is how long a file must sit unchanged before import.
// Clients write result files in chunks; importing mid-write would see a
// truncated trial stream.
const settleDelay = 500 * time.Millisecond

// ImportResult describes the outcome of importing one result file.
type ImportResult struct {
	AssessmentID string
	Score        int
	Skipped      bool
	Reason       string
}

// ImportFile parses, re-scores, and stores a single result file, then
// archives it. Already-imported assessments are skipped, not errors.
func ImportFile(path string, db *store.Store, cfg config.Config) (ImportResult, error) {
	sess, err := intake.ParseFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	sum, err := sess.Score()
	if err != nil {
		return ImportResult{}, fmt.Errorf("score %s: %w", filepath.Base(path), err)
	}

	if err := db.Save(sum); err != nil {
		if errors.Is(err, store.ErrExists) {
			return ImportResult{AssessmentID: sum.AssessmentID, Skipped: true, Reason: "already imported"}, nil
		}
		return ImportResult{}, fmt.Errorf("save %s: %w", sum.AssessmentID, err)
	}

	if cfg.Archive.Compress {
		if _, err := export.Archive(path, cfg.ArchiveDir(), sum.AssessmentID); err != nil {
			log.Printf("warning: archive %s: %v", filepath.Base(path), err)
		}
	}

	if !cfg.Archive.Keep {
		if err := os.Remove(path); err != nil {
			log.Printf("warning: remove %s: %v", path, err)
		}
	}

	return ImportResult{AssessmentID: sum.AssessmentID, Score: sum.Score}, nil
}

// ImportDir imports every result file already sitting in the inbox.
// Returns the number imported.
func ImportDir(dir string, db *store.Store, cfg config.Config) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox: %w", err)
	}

	imported := 0
	for _, e := range entries {
		if e.IsDir() || !isResultFile(e.Name()) {
			continue
		}
		res, err := ImportFile(filepath.Join(dir, e.Name()), db, cfg)
		if err != nil {
			log.Printf("warning: %v", err)
			continue
		}
		if res.Skipped {
			log.Printf("skipped %s (%s)", res.AssessmentID, res.Reason)
			continue
		}
		imported++
		log.Printf("imported %s (score %d)", res.AssessmentID, res.Score)
	}
	return imported, nil
}

// Watcher imports result files as they land in the inbox.
type Watcher struct {
	cfg config.Config
	db  *store.Store
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time // path -> last write seen

	// Imported receives the result of each import. Nil unless set
	// before Start; used by tests and status displays.
	Imported chan ImportResult
}

// New creates a watcher for the configured inbox directory.
func New(cfg config.Config, db *store.Store) (*Watcher, error) {
	if err := os.MkdirAll(cfg.InboxDir, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(cfg.InboxDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.InboxDir, err)
	}

	return &Watcher{
		cfg:     cfg,
		db:      db,
		fsw:     fsw,
		pending: make(map[string]time.Time),
	}, nil
}

// Run processes inbox events until ctx is cancelled. Files already in
// the inbox are imported first.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if _, err := ImportDir(w.cfg.InboxDir, w.db, w.cfg); err != nil {
		log.Printf("warning: initial sweep: %v", err)
	}

	ticker := time.NewTicker(settleDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !isResultFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("warning: watcher: %v", err)

		case <-ticker.C:
			w.processSettled()
		}
	}
}

// processSettled imports pending files whose last write is older than
// the settle delay.
func (w *Watcher) processSettled() {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= settleDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		res, err := ImportFile(path, w.db, w.cfg)
		if err != nil {
			log.Printf("warning: %v", err)
			continue
		}
		if res.Skipped {
			log.Printf("skipped %s (%s)", res.AssessmentID, res.Reason)
		} else {
			log.Printf("imported %s (score %d)", res.AssessmentID, res.Score)
		}
		if w.Imported != nil {
			w.Imported <- res
		}
	}
}

// isResultFile reports whether a path looks like a session result file.
func isResultFile(path string) bool {
	return strings.HasSuffix(path, ".jsonl")
}
