// Copyright (c) 2024 Neomantra Corp
//
// Store is the catalog's entry point: an explicit value wrapping an FS
// root, replacing persistence/catalog.py's process-wide DataCatalog
// singleton (this package never holds global state). Writer construction
// follows internal/file/parquet_writer.go's WriteDbnFileAsParquet: build
// WriterProperties, resolve the record type's GroupNode, open a buffered
// row group, write columns, flush with footer. Reader construction is the
// mirror image using pqfile.NewParquetReader.

package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/internal/arrowschema"
)

// Store is a catalog root: an FS plus the SchemaVersion it was written
// with. Every operation takes the Store as an explicit receiver; there is
// no process-wide singleton.
type Store struct {
	FS      FS
	Version int
}

func Open(fs FS) *Store {
	return &Store{FS: fs, Version: SchemaVersion}
}

func OpenLocal(root string) *Store {
	return Open(NewLocal(root))
}

// CatalogRootEnv names the environment variable OpenDefault reads for the
// catalog root path.
const CatalogRootEnv = "MDCAT_CATALOG_ROOT"

// OpenDefault opens the catalog named by the MDCAT_CATALOG_ROOT
// environment variable, read once at call time. There is no process-wide
// default Store; the returned value is owned by the caller.
func OpenDefault() (*Store, error) {
	root := os.Getenv(CatalogRootEnv)
	if root == "" {
		return nil, fmt.Errorf("catalog: %s is not set", CatalogRootEnv)
	}
	return OpenLocal(root), nil
}

// ListDataTypes enumerates the record-table stems present under
// <root>/data, e.g. ["quote_tick", "trade_tick"].
func (s *Store) ListDataTypes() ([]string, error) {
	entries, err := s.FS.List("data")
	if err != nil {
		return nil, err
	}
	var stems []string
	for _, e := range entries {
		if stem, ok := strings.CutSuffix(e, ".parquet"); ok {
			stems = append(stems, stem)
		}
	}
	return stems, nil
}

// ListPartitions enumerates rt's hive-style partition values, decoded back
// to their original instrument id text via the table's mapping sidecar.
func (s *Store) ListPartitions(rt mdcat.RecordType) ([]string, error) {
	tableDir := TableDir(rt)
	mappings, err := LoadMappings(s.FS, tableDir)
	if err != nil {
		return nil, err
	}
	entries, err := s.FS.List(tableDir)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, e := range entries {
		key, ok := strings.CutPrefix(e, "instrument_id=")
		if !ok {
			continue
		}
		if original, ok := mappings.Original(key); ok {
			key = original
		}
		values = append(values, key)
	}
	return values, nil
}

// WriteParquet writes a single row group to path using rt's Arrow schema,
// invoking write to fill the row group's columns. Callers go through
// internal/codec's EncodeXxxBatch functions for write.
func (s *Store) WriteParquet(path string, rt mdcat.RecordType, write func(pqfile.BufferedRowGroupWriter) error) error {
	groupNode, err := arrowschema.ForRecordType(rt)
	if err != nil {
		return err
	}
	return s.writeGroup(path, groupNode, write)
}

// WriteInstrumentParquet writes a single row group to path using kind's
// Arrow schema, invoking write to fill the row group's columns. Callers
// go through internal/codec's EncodeXxxBatch instrument functions for
// write.
func (s *Store) WriteInstrumentParquet(path string, kind mdcat.InstrumentKind, write func(pqfile.BufferedRowGroupWriter) error) error {
	groupNode, err := arrowschema.ForInstrumentKind(kind)
	if err != nil {
		return err
	}
	return s.writeGroup(path, groupNode, write)
}

func (s *Store) writeGroup(path string, groupNode *pqschema.GroupNode, write func(pqfile.BufferedRowGroupWriter) error) (err error) {
	w, err := s.FS.Create(path)
	if err != nil {
		return err
	}
	// commit on success, discard the staged content on any failure so no
	// partial file ever becomes visible at path
	defer func() {
		if err != nil {
			DiscardWriter(w)
			return
		}
		err = w.Close()
	}()

	props := parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCompression(compress.Codecs.Snappy),
	)
	// the parquet writer closes a sink that has a Close method; hide it so
	// only the deferred commit/discard above ever closes w
	pw := pqfile.NewParquetWriter(struct{ io.Writer }{w}, groupNode, pqfile.WithWriterProps(props))
	defer pw.Close()

	rgw := pw.AppendBufferedRowGroup()
	if err = write(rgw); err != nil {
		rgw.Close()
		return err
	}
	if err = rgw.Close(); err != nil {
		return err
	}
	err = pw.FlushWithFooter()
	return err
}

// ReadParquet opens path and invokes read once per row group, in order.
func (s *Store) ReadParquet(path string, read func(*pqfile.RowGroupReader) error) error {
	r, err := s.FS.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	ra, ok := r.(readerAtSeekCloser)
	if !ok {
		return fmt.Errorf("catalog: %s: filesystem must expose ReadAt/Seek for parquet reads", path)
	}

	pr, err := pqfile.NewParquetReader(ra)
	if err != nil {
		return &mdcat.CorruptPartitionError{Path: path, Err: err}
	}
	defer pr.Close()

	for g := 0; g < pr.NumRowGroups(); g++ {
		if err := read(pr.RowGroup(g)); err != nil {
			return err
		}
	}
	return nil
}

// readerAtSeekCloser is what pqfile.NewParquetReader actually requires
// (parquet.ReaderAtSeeker, with a Close for symmetry with FS.Open's
// ReadCloser). *os.File and Memory's bytes.Reader both satisfy it.
type readerAtSeekCloser interface {
	ReadAt(p []byte, off int64) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
}
