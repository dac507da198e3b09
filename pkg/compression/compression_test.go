package compression

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"testing"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// TestDetectCompression verifies compression type detection
func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		expected CompressionType
	}{
		{"gzip lowercase", "gzip", CompressionGzip},
		{"gzip uppercase", "GZIP", CompressionGzip},
		{"gzip with spaces", "  gzip  ", CompressionGzip},
		{"deflate", "deflate", CompressionDeflate},
		{"br", "br", CompressionBrotli},
		{"brotli full name", "brotli", CompressionBrotli},
		{"zstd", "zstd", CompressionZstd},
		{"identity", "identity", CompressionNone},
		{"unknown encoding", "compress", CompressionNone},
		{"empty string", "", CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCompression(tt.encoding); got != tt.expected {
				t.Errorf("DetectCompression(%q) = %v, want %v", tt.encoding, got, tt.expected)
			}
		})
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		accept string
		want   CompressionType
	}{
		{"", CompressionNone},
		{"gzip", CompressionGzip},
		{"gzip, deflate, br", CompressionGzip},
		{"gzip;q=0.5, br", CompressionBrotli},
		{"br;q=0, zstd;q=0.1", CompressionZstd},
		{"identity, compress", CompressionNone},
		{"gzip;q=bogus, deflate", CompressionDeflate},
	}

	for _, tt := range tests {
		if got := Negotiate(tt.accept); got != tt.want {
			t.Errorf("Negotiate(%q) = %v, want %v", tt.accept, got, tt.want)
		}
	}
}

// ============================================================================
// Compression output must be readable by the reference decoders
// ============================================================================

func TestCompressGzipReadableByStdlib(t *testing.T) {
	original := []byte("Hello, this is a test message for gzip compression!")

	compressed, err := Compress(original, CompressionGzip)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("gzip.NewReader failed: %v", err)
	}
	got, _ := io.ReadAll(r)
	if !bytes.Equal(got, original) {
		t.Errorf("got %q, want %q", got, original)
	}
}

func TestCompressDeflateIsZlib(t *testing.T) {
	original := []byte("deflate body")

	compressed, err := Compress(original, CompressionDeflate)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("zlib.NewReader failed: %v", err)
	}
	got, _ := io.ReadAll(r)
	if !bytes.Equal(got, original) {
		t.Errorf("got %q, want %q", got, original)
	}
}

func TestCompressBrotliReadableByBrotli(t *testing.T) {
	original := bytes.Repeat([]byte("brotli "), 50)

	compressed, err := Compress(original, CompressionBrotli)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	got, _ := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if !bytes.Equal(got, original) {
		t.Errorf("brotli output did not decode to the original")
	}
}

func TestCompressZstdReadableByZstd(t *testing.T) {
	original := bytes.Repeat([]byte("zstd "), 50)

	compressed, err := Compress(original, CompressionZstd)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("zstd.NewReader failed: %v", err)
	}
	defer dec.Close()

	got, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		t.Fatalf("DecodeAll failed: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Errorf("zstd output did not decode to the original")
	}
}

func TestRoundTrip(t *testing.T) {
	original := []byte(`{"gzipped": true, "headers": {"Accept": "*/*"}}`)

	for _, ct := range []CompressionType{CompressionNone, CompressionGzip, CompressionDeflate, CompressionBrotli, CompressionZstd} {
		t.Run(ct.String(), func(t *testing.T) {
			compressed, err := Compress(original, ct)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			decompressed, err := Decompress(compressed, ct)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(decompressed, original) {
				t.Errorf("round trip mismatch: %q", decompressed)
			}
		})
	}
}

func TestDecompressEmptyData(t *testing.T) {
	got, err := Decompress(nil, CompressionGzip)
	if err != nil {
		t.Fatalf("Decompress(nil) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Decompress(nil) = %q, want empty", got)
	}
}

func TestDecompressInvalidGzipIsMalformedBody(t *testing.T) {
	_, err := Decompress([]byte("not gzip data"), CompressionGzip)
	if err == nil {
		t.Fatal("expected error for invalid gzip")
	}
	if !errors.Is(err, errors.ErrorTypeMalformedBody) {
		t.Errorf("error type = %v, want MalformedBody", err)
	}
}

func TestDecompressInvalidDeflate(t *testing.T) {
	if _, err := Decompress([]byte("not deflate data"), CompressionDeflate); err == nil {
		t.Error("expected error for invalid deflate")
	}
}
