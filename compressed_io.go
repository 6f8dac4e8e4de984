// Copyright (c) 2025 Neomantra Corp
// Reader/Writer Compression helpers
//
// Adapted from Neomantra's Gist, generalized to the full set of compression
// hints named for the Raw-File Reader (auto|gzip|bzip2|zstd|none):
//
// https://gist.github.com/neomantra/691a6028cdf2ac3fc6ec97d00e8ea802
//

package mdcat

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compression names the compression hint for a raw market-data file.
type Compression uint8

const (
	Compression_Auto Compression = iota
	Compression_None
	Compression_Gzip
	Compression_Bzip2
	Compression_Zstd
)

func (c Compression) String() string {
	switch c {
	case Compression_Auto:
		return "auto"
	case Compression_None:
		return "none"
	case Compression_Gzip:
		return "gzip"
	case Compression_Bzip2:
		return "bzip2"
	case Compression_Zstd:
		return "zstd"
	}
	return "unknown"
}

// CompressionFromString parses a compression hint's name, as accepted on
// CLI flags and config values.
func CompressionFromString(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return Compression_Auto, nil
	case "none":
		return Compression_None, nil
	case "gzip":
		return Compression_Gzip, nil
	case "bzip2":
		return Compression_Bzip2, nil
	case "zstd":
		return Compression_Zstd, nil
	default:
		return Compression_Auto, fmt.Errorf("unknown compression %q, want auto|none|gzip|bzip2|zstd", s)
	}
}

// detectCompression infers a Compression from a filename's extension, used
// when the caller passes Compression_Auto.
func detectCompression(filename string) Compression {
	switch {
	case strings.HasSuffix(filename, ".zst"), strings.HasSuffix(filename, ".zstd"):
		return Compression_Zstd
	case strings.HasSuffix(filename, ".gz"), strings.HasSuffix(filename, ".gzip"):
		return Compression_Gzip
	case strings.HasSuffix(filename, ".bz2"):
		return Compression_Bzip2
	default:
		return Compression_None
	}
}

///////////////////////////////////////////////////////////////////////////////

// MakeCompressedWriter returns an io.Writer for the given filename, or
// os.Stdout if filename is "-". Also returns a closing function to defer
// and any error. The filename's extension picks the codec unless
// compression is explicitly set to something other than Compression_Auto.
// Only zstd and none are supported for writing (gzip/bzip2 are read-only
// hints for third-party raw files we ingest, never a format we produce).
func MakeCompressedWriter(filename string, compression Compression) (io.Writer, func(), error) {
	var writer io.Writer
	var closer io.Closer
	fileCloser := func() {
		if closer != nil {
			closer.Close()
		}
	}
	if filename != "-" {
		file, err := os.Create(filename)
		if err != nil {
			return nil, nil, err
		}
		writer, closer = file, file
	} else {
		writer, closer = os.Stdout, nil
	}

	if compression == Compression_Auto {
		compression = detectCompression(filename)
	}

	if compression == Compression_Zstd {
		zstdWriter, err := zstd.NewWriter(writer)
		if err != nil {
			fileCloser()
			return nil, nil, err
		}
		zstdCloser := func() {
			zstdWriter.Close()
			fileCloser()
		}
		return zstdWriter, zstdCloser, nil
	}
	return writer, fileCloser, nil
}

///////////////////////////////////////////////////////////////////////////////

// MakeCompressedReader returns an io.Reader for the given filename, or
// os.Stdin if filename is "-". Also returns a closing function to defer.
// compression selects the codec; Compression_Auto infers it from the
// filename's extension.
func MakeCompressedReader(filename string, compression Compression) (io.Reader, io.Closer, error) {
	var reader io.Reader
	var closer io.Closer

	if filename != "-" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, nil, err
		}
		reader, closer = file, file
	} else {
		reader, closer = os.Stdin, nil
	}

	if compression == Compression_Auto {
		compression = detectCompression(filename)
	}

	decoded, err := WrapCompressedReader(reader, filename, compression)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	return decoded, closer, nil
}

// WrapCompressedReader layers the codec named by compression (inferred
// from filename's extension under Compression_Auto) over an already-open
// stream, for callers whose bytes arrive through a filesystem abstraction
// rather than a local path.
func WrapCompressedReader(r io.Reader, filename string, compression Compression) (io.Reader, error) {
	if compression == Compression_Auto {
		compression = detectCompression(filename)
	}
	switch compression {
	case Compression_Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case Compression_Gzip:
		return gzip.NewReader(r)
	case Compression_Bzip2:
		return bzip2.NewReader(r), nil
	}
	return r, nil
}
