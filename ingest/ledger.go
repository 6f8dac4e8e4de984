// Copyright (c) 2024 Neomantra Corp
//
// Processed-file ledger, mirroring catalog/mappings.go's sidecar pattern:
// a JSON file at the catalog root recording every raw file path that has
// been durably ingested, so a re-run of process_files skips files already
// committed. Updated only after a file's last chunk is durably written,
// per the ingestion pipeline's failure semantics.

package ingest

import (
	"io"
	"sort"
	"sync"

	"github.com/segmentio/encoding/json"

	"github.com/marketcore/mdcat-go/catalog"
)

const ledgerFileName = ".processed_raw_files.json"

// Ledger tracks which raw file paths have been durably ingested.
type Ledger struct {
	mu   sync.RWMutex
	done map[string]bool
}

func newLedger() *Ledger {
	return &Ledger{done: make(map[string]bool)}
}

// LoadLedger reads the catalog-root ledger sidecar. A missing ledger means
// nothing has been ingested yet.
func LoadLedger(fs catalog.FS) (*Ledger, error) {
	l := newLedger()
	if !fs.Exists(ledgerFileName) {
		return l, nil
	}
	r, err := fs.Open(ledgerFileName)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return l, nil
	}
	var paths []string
	if err := json.Unmarshal(raw, &paths); err != nil {
		return nil, err
	}
	for _, p := range paths {
		l.done[p] = true
	}
	return l, nil
}

// IsProcessed reports whether path has already been durably ingested.
func (l *Ledger) IsProcessed(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.done[path]
}

// MarkProcessed records path as durably ingested. Call only after the
// file's last chunk has been committed to the catalog.
func (l *Ledger) MarkProcessed(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[path] = true
}

// Flush writes the ledger back to fs.
func (l *Ledger) Flush(fs catalog.FS) error {
	l.mu.RLock()
	paths := make([]string, 0, len(l.done))
	for p := range l.done {
		paths = append(paths, p)
	}
	l.mu.RUnlock()
	sort.Strings(paths)

	raw, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	w, err := fs.Create(ledgerFileName)
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		catalog.DiscardWriter(w)
		return err
	}
	return w.Close()
}
