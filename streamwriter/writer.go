// Copyright (c) 2024 Neomantra Corp
//
// Append-only Stream Writer for run artifacts (spec.md §4.9), grounded on
// internal/file/parquet_writer.go's WriteDbnFileAsParquet but kept open
// across many flushes instead of writing once: each record type gets its
// own underlying pqfile.Writer under the run directory, buffered records
// are appended as a new row group on every flush, and the footer is only
// written at Close. A background goroutine flushes on a wall-clock
// interval (default 1s); Close flushes once more, then closes every
// stream's writer in a deterministic (name-sorted) order, and tolerates
// being called twice.

package streamwriter

import (
	"path"
	"sort"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	"github.com/segmentio/encoding/json"

	"github.com/marketcore/mdcat-go"
	"github.com/marketcore/mdcat-go/catalog"
	"github.com/marketcore/mdcat-go/internal/arrowschema"
	"github.com/marketcore/mdcat-go/internal/codec"
)

const defaultFlushInterval = time.Second

type streamHandle interface {
	flush() error
	close() error
}

// Writer owns one append-only stream per record type (or per user-defined
// record name) under a single run directory.
type Writer struct {
	fs       catalog.FS
	runDir   string
	interval time.Duration

	mu      sync.Mutex
	streams map[string]streamHandle
	names   []string
	closed  bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// New opens a Writer rooted at runDir, flushing every interval (the
// default 1s is used when interval <= 0).
func New(fs catalog.FS, runDir string, interval time.Duration) *Writer {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	w := &Writer{
		fs:       fs,
		runDir:   runDir,
		interval: interval,
		streams:  make(map[string]streamHandle),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) run() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = w.FlushAll()
		case <-w.stopCh:
			return
		}
	}
}

// FlushAll flushes every open stream's buffered records immediately,
// without closing anything.
func (w *Writer) FlushAll() error {
	w.mu.Lock()
	names := append([]string(nil), w.names...)
	w.mu.Unlock()

	for _, name := range names {
		w.mu.Lock()
		s := w.streams[name]
		w.mu.Unlock()
		if err := s.flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes every stream in deterministic (name-sorted)
// order, then stops the background flush loop. A second call is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	names := append([]string(nil), w.names...)
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	sort.Strings(names)
	var firstErr error
	for _, name := range names {
		s := w.streams[name]
		if err := s.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

///////////////////////////////////////////////////////////////////////////////

type typedStream[T any] struct {
	mu     sync.Mutex
	pw     *pqfile.Writer
	buf    []T
	encode func(pqfile.BufferedRowGroupWriter, []T) error
}

func (s *typedStream[T]) append(recs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, recs...)
}

func (s *typedStream[T]) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return nil
	}
	rgw := s.pw.AppendBufferedRowGroup()
	if err := s.encode(rgw, s.buf); err != nil {
		rgw.Close()
		return err
	}
	if err := rgw.Close(); err != nil {
		return err
	}
	s.buf = s.buf[:0]
	return nil
}

func (s *typedStream[T]) close() error {
	if err := s.flush(); err != nil {
		return err
	}
	// Close writes the footer and closes the underlying file, which is what
	// commits it on the catalog FS
	return s.pw.Close()
}

func getOrCreateStream[T any](w *Writer, rt mdcat.RecordType, name string, encode func(pqfile.BufferedRowGroupWriter, []T) error) (*typedStream[T], error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.streams[name]; ok {
		return existing.(*typedStream[T]), nil
	}

	groupNode, err := arrowschema.ForRecordType(rt)
	if err != nil {
		return nil, err
	}
	if err := w.fs.MkdirAll(w.runDir); err != nil {
		return nil, err
	}
	f, err := w.fs.Create(path.Join(w.runDir, name+".parquet"))
	if err != nil {
		return nil, err
	}
	props := parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCompression(compress.Codecs.Snappy))
	pw := pqfile.NewParquetWriter(f, groupNode, pqfile.WithWriterProps(props))

	s := &typedStream[T]{pw: pw, encode: encode}
	w.streams[name] = s
	w.names = append(w.names, name)
	return s, nil
}

// AppendQuoteTicks buffers recs for the quote_tick stream, creating it on
// first use.
func AppendQuoteTicks(w *Writer, recs []*mdcat.QuoteTick) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_QuoteTick, mdcat.RecordType_QuoteTick.TableName(), codec.EncodeQuoteTickBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendTradeTicks buffers recs for the trade_tick stream.
func AppendTradeTicks(w *Writer, recs []*mdcat.TradeTick) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_TradeTick, mdcat.RecordType_TradeTick.TableName(), codec.EncodeTradeTickBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendBars buffers recs for the bar stream.
func AppendBars(w *Writer, recs []*mdcat.Bar) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_Bar, mdcat.RecordType_Bar.TableName(), codec.EncodeBarBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendOrderBookDeltas buffers recs for the order_book_delta stream.
func AppendOrderBookDeltas(w *Writer, recs []*mdcat.OrderBookDelta) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_OrderBookDelta, mdcat.RecordType_OrderBookDelta.TableName(), codec.EncodeOrderBookDeltaBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendOrderBookDepth10s buffers recs for the order_book_depth10 stream.
func AppendOrderBookDepth10s(w *Writer, recs []*mdcat.OrderBookDepth10) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_OrderBookDepth10, mdcat.RecordType_OrderBookDepth10.TableName(), codec.EncodeOrderBookDepth10Batch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendInstrumentStatuses buffers recs for the instrument_status stream.
func AppendInstrumentStatuses(w *Writer, recs []*mdcat.InstrumentStatus) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_InstrumentStatus, mdcat.RecordType_InstrumentStatus.TableName(), codec.EncodeInstrumentStatusBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendInstrumentCloses buffers recs for the instrument_close stream.
func AppendInstrumentCloses(w *Writer, recs []*mdcat.InstrumentClose) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_InstrumentClose, mdcat.RecordType_InstrumentClose.TableName(), codec.EncodeInstrumentCloseBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendFundingRateUpdates buffers recs for the funding_rate_update stream.
func AppendFundingRateUpdates(w *Writer, recs []*mdcat.FundingRateUpdate) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_FundingRateUpdate, mdcat.RecordType_FundingRateUpdate.TableName(), codec.EncodeFundingRateUpdateBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendMarkPriceUpdates buffers recs for the mark_price_update stream.
func AppendMarkPriceUpdates(w *Writer, recs []*mdcat.MarkPriceUpdate) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_MarkPriceUpdate, mdcat.RecordType_MarkPriceUpdate.TableName(), codec.EncodeMarkPriceUpdateBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

// AppendIndexPriceUpdates buffers recs for the index_price_update stream.
func AppendIndexPriceUpdates(w *Writer, recs []*mdcat.IndexPriceUpdate) error {
	s, err := getOrCreateStream(w, mdcat.RecordType_IndexPriceUpdate, mdcat.RecordType_IndexPriceUpdate.TableName(), codec.EncodeIndexPriceUpdateBatch)
	if err != nil {
		return err
	}
	s.append(recs)
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// jsonStream is the dynamically-registered-subtype path: UserRecord[T]'s T
// is only known at the call site, and constructing an Arrow schema for an
// arbitrary T by reflection is out of scope here, so a user-defined
// record's stream is a newline-delimited JSON file instead of a parquet
// one — it still gets its own file under the run directory, created at
// first sight, flushed on the same interval, and closed deterministically
// alongside the typed streams.
type jsonStream struct {
	mu  sync.Mutex
	w   interface {
		Write([]byte) (int, error)
		Close() error
	}
	buf [][]byte
}

func (s *jsonStream) appendRaw(lines [][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, lines...)
}

func (s *jsonStream) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range s.buf {
		if _, err := s.w.Write(line); err != nil {
			return err
		}
		if _, err := s.w.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	s.buf = s.buf[:0]
	return nil
}

func (s *jsonStream) close() error {
	if err := s.flush(); err != nil {
		return err
	}
	return s.w.Close()
}

// AppendUserRecords buffers a batch of dynamically-named user records,
// creating their newline-delimited JSON stream on first use.
func AppendUserRecords[T any](w *Writer, name string, recs []*mdcat.UserRecord[T]) error {
	w.mu.Lock()
	existing, ok := w.streams[name]
	var s *jsonStream
	if ok {
		s = existing.(*jsonStream)
	} else {
		if err := w.fs.MkdirAll(w.runDir); err != nil {
			w.mu.Unlock()
			return err
		}
		f, err := w.fs.Create(path.Join(w.runDir, name+".jsonl"))
		if err != nil {
			w.mu.Unlock()
			return err
		}
		s = &jsonStream{w: f}
		w.streams[name] = s
		w.names = append(w.names, name)
	}
	w.mu.Unlock()

	lines := make([][]byte, 0, len(recs))
	for _, r := range recs {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	s.appendRaw(lines)
	return nil
}
