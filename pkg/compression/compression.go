package compression

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// CompressionType represents supported compression algorithms
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionDeflate
	CompressionBrotli
	CompressionZstd
)

// DetectCompression detects compression type from a Content-Encoding value
// Supports: gzip, x-gzip, deflate, br, brotli, zstd, identity
func DetectCompression(contentEncoding string) CompressionType {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip":
		return CompressionGzip
	case "deflate", "x-deflate":
		return CompressionDeflate
	case "br", "brotli":
		return CompressionBrotli
	case "zstd", "zstandard":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// String returns the Content-Encoding token for ct
func (ct CompressionType) String() string {
	switch ct {
	case CompressionGzip:
		return "gzip"
	case CompressionDeflate:
		return "deflate"
	case CompressionBrotli:
		return "br"
	case CompressionZstd:
		return "zstd"
	default:
		return "identity"
	}
}

// IsSupported checks if a Content-Encoding value is supported
func IsSupported(contentEncoding string) bool {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip", "deflate", "x-deflate", "br", "brotli", "zstd", "zstandard", "identity", "":
		return true
	default:
		return false
	}
}

// Negotiate picks the preferred supported encoding from an Accept-Encoding
// value. Entries with q=0 are refused; ties keep header order.
func Negotiate(acceptEncoding string) CompressionType {
	best := CompressionNone
	bestQ := 0.0

	for _, part := range strings.Split(acceptEncoding, ",") {
		token, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		q := 1.0
		if p := strings.TrimSpace(params); strings.HasPrefix(p, "q=") {
			v, err := strconv.ParseFloat(strings.TrimPrefix(p, "q="), 64)
			if err != nil {
				continue
			}
			q = v
		}
		ct := DetectCompression(token)
		if ct == CompressionNone || q <= 0 {
			continue
		}
		if q > bestQ {
			best, bestQ = ct, q
		}
	}
	return best
}

// Compress compresses data using the specified algorithm
func Compress(data []byte, compressionType CompressionType) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewCompressWriter(&buf, compressionType)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress %s: %w", compressionType, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress %s: %w", compressionType, err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses data based on the compression type
func Decompress(data []byte, compressionType CompressionType) ([]byte, error) {
	if len(data) == 0 || compressionType == CompressionNone {
		return data, nil
	}

	r, err := NewDecompressReader(bytes.NewReader(data), compressionType)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
			"failed to decompress "+compressionType.String()+" data", "decompress", err)
	}
	return decompressed, nil
}

// NewDecompressReader creates a streaming decompression reader.
// Returns the original reader unchanged if compressionType is CompressionNone.
func NewDecompressReader(r io.Reader, compressionType CompressionType) (io.ReadCloser, error) {
	switch compressionType {
	case CompressionNone:
		return io.NopCloser(r), nil

	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
				"invalid gzip stream", "NewDecompressReader", err)
		}
		return gr, nil

	case CompressionDeflate:
		// HTTP "deflate" is the zlib format (RFC 9110 8.4.1.2)
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
				"invalid deflate stream", "NewDecompressReader", err)
		}
		return zr, nil

	case CompressionBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil

	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
				"invalid zstd stream", "NewDecompressReader", err)
		}
		return zr.IOReadCloser(), nil

	default:
		return nil, errors.NewError(errors.ErrorTypeMalformedBody,
			"unsupported compression type", "NewDecompressReader")
	}
}

// NewCompressWriter creates a streaming compression writer.
// Close must be called to flush and finalize the stream.
func NewCompressWriter(w io.Writer, compressionType CompressionType) (io.WriteCloser, error) {
	switch compressionType {
	case CompressionNone:
		return nopCloserWriter{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionDeflate:
		return zlib.NewWriter(w), nil
	case CompressionBrotli:
		return brotli.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("create zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unsupported compression type %d", compressionType)
	}
}

// nopCloserWriter wraps an io.Writer to provide io.WriteCloser with no-op Close
type nopCloserWriter struct {
	io.Writer
}

func (nopCloserWriter) Close() error {
	return nil
}
