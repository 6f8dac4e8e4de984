// Copyright (c) 2024 Neomantra Corp
//
// Partition-key mapping sidecar, adapted from the teacher's point-in-time
// symbol mapping (one JSON sidecar per table directory) and grounded on
// persistence/external/metadata.py's load_mappings/write_partition_column_mappings:
// a table directory's sanitized partition keys don't always round-trip to
// the original instrument id text (SanitizePartitionKey is lossy for
// characters outside the unsafe set's complement), so the sidecar records
// sanitized -> original for every partition key the table has ever seen.

package catalog

import (
	"fmt"
	"io"
	"sync"

	"github.com/segmentio/encoding/json"

	"github.com/marketcore/mdcat-go"
)

// Mappings holds a table directory's sanitized -> original instrument id
// partition key mapping, loaded from and flushed to MappingsFile(tableDir).
type Mappings struct {
	mu   sync.RWMutex
	data map[string]string
}

func newMappings() *Mappings {
	return &Mappings{data: make(map[string]string)}
}

// LoadMappings reads a table directory's mapping sidecar. A missing
// sidecar is not an error: it means the table has no partitions yet.
func LoadMappings(fs FS, tableDir string) (*Mappings, error) {
	m := newMappings()
	path := MappingsFile(tableDir)
	if !fs.Exists(path) {
		return m, nil
	}
	r, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m.data); err != nil {
		return nil, &mdcat.CorruptPartitionError{Path: path, Err: err}
	}
	return m, nil
}

// Record ensures instrumentId's sanitized key is mapped, returning the
// sanitized key to use as the partition directory name. Sanitization is
// many-to-one ("A/B.X" and "A B.X" both sanitize to "A-B.X"), so a key
// already mapped to a different original is refused rather than
// overwritten: silently remapping would conflate two instruments'
// partition directories and break the sidecar's sanitized -> original
// injectivity.
func (m *Mappings) Record(instrumentId mdcat.InstrumentId) (string, error) {
	original := instrumentId.String()
	key := mdcat.SanitizePartitionKey(original)
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok && existing != original {
		return "", fmt.Errorf("catalog: sanitized partition key %q already maps to %q, cannot also map %q", key, existing, original)
	}
	m.data[key] = original
	return key, nil
}

// Original reverses a sanitized partition key back to its instrument id
// text, for query results that need to report the true instrument id
// rather than its filesystem-safe form.
func (m *Mappings) Original(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	original, ok := m.data[key]
	return original, ok
}

// Flush writes the mapping sidecar back to fs.
func (m *Mappings) Flush(fs FS, tableDir string) error {
	m.mu.RLock()
	raw, err := json.Marshal(m.data)
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	w, err := fs.Create(MappingsFile(tableDir))
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		DiscardWriter(w)
		return err
	}
	return w.Close()
}
