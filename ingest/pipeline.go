// Copyright (c) 2024 Neomantra Corp
//
// Ingestion pipeline: ProcessFiles parses raw files through a
// rawfile.Parser, groups the resulting records by (table, instrument_id),
// sorts each group by ts_init, and writes one partition file per group
// through the catalog Store. Grounded on dbn-go's single-threaded
// scan-then-write shape (internal/file/parquet_writer.go's
// WriteDbnFileAsParquet), generalized to accept the Executor abstraction
// for per-file parallelism.

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/rawfile"
)

// Config carries the ingestion pipeline's tunables, read with SetFromEnv
// the way the teacher's live.LiveConfig does.
type Config struct {
	CatalogRoot string
	BlockSize   int               // bytes pulled per Parse call; <= 0 means the reader's default
	Compression mdcat.Compression // codec hint for raw input files; Auto infers from extension
	Logger      *slog.Logger
}

// SetFromEnv fills unset fields from the environment: the catalog root
// from MDCAT_CATALOG_ROOT and the compression hint from MDCAT_COMPRESSION.
func (c *Config) SetFromEnv() error {
	if c.CatalogRoot == "" {
		c.CatalogRoot = os.Getenv(catalog.CatalogRootEnv)
	}
	if hint := os.Getenv("MDCAT_COMPRESSION"); hint != "" && c.Compression == mdcat.Compression_Auto {
		compression, err := mdcat.CompressionFromString(hint)
		if err != nil {
			return err
		}
		c.Compression = compression
	}
	return c.validate()
}

func (c *Config) validate() error {
	if c.CatalogRoot == "" {
		return fmt.Errorf("ingest: CatalogRoot is required")
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Result reports how many rows ProcessFiles durably wrote per input file.
type Result struct {
	RowsWritten map[string]int
	mu          sync.Mutex
}

func newResult() *Result {
	return &Result{RowsWritten: make(map[string]int)}
}

func (r *Result) record(file string, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RowsWritten[file] += rows
}

// ProcessFiles ingests every path in files through parser into store,
// using executor for per-file parallelism. Writes to the same
// (table, partition) are serialized by a mutex keyed on that pair so
// concurrent files never race on one partition directory.
func ProcessFiles(ctx context.Context, cfg Config, files []string, parser rawfile.Parser, store *catalog.Store, executor Executor) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.logger()

	ledger, err := LoadLedger(store.FS)
	if err != nil {
		return nil, err
	}

	result := newResult()
	locks := newPartitionLockSet()

	for _, file := range files {
		file := file
		if ledger.IsProcessed(file) {
			logger.Info("ingest skip already-processed file", "path", file)
			continue
		}
		executor.Submit(ctx, func() error {
			jobId := uuid.New().String()
			logger.Info("ingest start", "job_id", jobId, "path", file)

			collector := newCollectingVisitor()
			fsrc := rawfile.ForURI(file)
			src, err := fsrc.Open(ctx, file)
			if err != nil {
				return &mdcat.IoError{Op: "open", Path: file, Err: err}
			}

			decoded, err := mdcat.WrapCompressedReader(src, file, cfg.Compression)
			if err != nil {
				src.Close()
				return &mdcat.IoError{Op: "decompress", Path: file, Err: err}
			}

			fileParser := parser
			if scoped, ok := parser.(rawfile.FileScoped); ok {
				fileParser = scoped.NewFile()
			}

			reader := rawfile.NewReaderSize(file, decoded, src, fileParser, cfg.BlockSize)
			if runErr := reader.Run(collector); runErr != nil {
				reader.Close()
				return runErr
			}
			if err := reader.Close(); err != nil {
				return err
			}

			rows, err := flushAll(store, locks, collector)
			if err != nil {
				return err
			}
			result.record(file, rows)
			ledger.MarkProcessed(file)
			logger.Info("ingest done",
				"job_id", jobId, "path", file, "rows", rows,
				"approx_bytes", humanize.Bytes(uint64(collector.approxBytes())))
			return nil
		})
	}

	if errs := executor.Join(ctx); len(errs) > 0 {
		return result, fmt.Errorf("ingest: %d file(s) failed: %w", len(errs), errs[0])
	}
	if err := ledger.Flush(store.FS); err != nil {
		return result, err
	}
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////

// partitionLockSet serializes writes to a given (table, partition) pair,
// per spec.md's "writes are serialized per (table, partition) using a
// mutex keyed by that pair".
type partitionLockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPartitionLockSet() *partitionLockSet {
	return &partitionLockSet{locks: make(map[string]*sync.Mutex)}
}

func (s *partitionLockSet) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}
