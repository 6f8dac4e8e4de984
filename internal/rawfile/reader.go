// Copyright (c) 2024 Neomantra Corp
//
// Chunked, compression-aware raw-file reader. Adapted from dbn-go's
// DbnScanner: a bufio.Reader wrapped around the decompressed stream,
// pulled through in fixed-size chunks rather than one record at a time,
// so a ParseError can be scoped to "this chunk of this file" per the
// ingestion pipeline's per-chunk failure isolation.

package rawfile

import (
	"bufio"
	"io"

	"github.com/marketcore/mdcat-go"
)

// DefaultChunkSize is the buffer size pulled from the source reader per
// Parser.Parse call.
const DefaultChunkSize = 64 * 1024

// Parser decodes records out of a byte chunk and visits each one. It
// returns the number of bytes fully consumed (a parser may hold back a
// trailing partial record, which Reader re-prepends to the next chunk).
type Parser interface {
	Parse(chunk []byte, visitor mdcat.Visitor) (consumed int, err error)
}

// Reader pulls chunks from a compression-decoded source and feeds them to
// a Parser, tracking a chunk index so callers can build a ParseError.
type Reader struct {
	file       string
	src        *bufio.Reader
	closer     io.Closer
	parser     Parser
	chunkIndex int
	carry      []byte
	buf        []byte
}

// NewReader constructs a Reader over an already-decompressed stream (see
// mdcat.MakeCompressedReader), scoped to file for error reporting.
func NewReader(file string, src io.Reader, closer io.Closer, parser Parser) *Reader {
	return NewReaderSize(file, src, closer, parser, 0)
}

// NewReaderSize is NewReader with an explicit per-Parse block size in
// bytes; blockSize <= 0 falls back to DefaultChunkSize.
func NewReaderSize(file string, src io.Reader, closer io.Closer, parser Parser, blockSize int) *Reader {
	if blockSize <= 0 {
		blockSize = DefaultChunkSize
	}
	return &Reader{
		file:   file,
		src:    bufio.NewReaderSize(src, blockSize),
		closer: closer,
		parser: parser,
		buf:    make([]byte, blockSize),
	}
}

// Close releases the underlying stream, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Run reads the file to completion, calling the Parser on each chunk and
// visiting decoded records. It returns on the first parse error (wrapped
// in a *mdcat.ParseError scoped to the failing chunk) or nil at EOF.
func (r *Reader) Run(visitor mdcat.Visitor) error {
	for {
		n, readErr := r.src.Read(r.buf)
		if n > 0 {
			chunk := append(r.carry, r.buf[:n]...)
			consumed, err := r.parser.Parse(chunk, visitor)
			if err != nil {
				return &mdcat.ParseError{File: r.file, Chunk: r.chunkIndex, Err: err}
			}
			r.carry = append(r.carry[:0], chunk[consumed:]...)
			r.chunkIndex++
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return &mdcat.IoError{Op: "read", Path: r.file, Err: readErr}
		}
	}
	if len(r.carry) > 0 {
		if _, err := r.parser.Parse(r.carry, visitor); err != nil {
			return &mdcat.ParseError{File: r.file, Chunk: r.chunkIndex, Err: err}
		}
	}
	return visitor.OnStreamEnd()
}
