package jsonsrc_test

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"os"
	"testing"

	"github.com/tailscale/hujson"

	"github.com/spacgo/spac/jsonsrc"
)

// A local file path holding the benchmark input. Defaults to a small
// booklist fixture; point it at a larger document to get a more realistic
// read on throughput.
var inputPath = flag.String("input", "testdata/input.json", "Input JSON file path")

func readInput(b *testing.B) []byte {
	b.Helper()
	input, err := os.ReadFile(*inputPath)
	if err != nil {
		b.Fatalf("reading benchmark input: %v", err)
	}
	return input
}

// BenchmarkScanner compares spac's own pull-based Source against both the
// standard library's decoder and hujson's relaxed-JSON parser, the same
// three-way comparison github.com/creachadair/jtree's own BenchmarkScanner
// draws between its scanner, encoding/json, and hujson.
func BenchmarkScanner(b *testing.B) {
	input := readInput(b)
	b.Logf("benchmark input: %d bytes", len(input))

	b.Run("Std", func(b *testing.B) {
		b.Run("Tokenize", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				dec := json.NewDecoder(bytes.NewReader(input))
				for {
					if _, err := dec.Token(); err == io.EOF {
						break
					} else if err != nil {
						b.Fatalf("unexpected error: %v", err)
					}
				}
			}
		})
		b.Run("Decode", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				var ignore any
				if err := json.Unmarshal(input, &ignore); err != nil {
					b.Fatalf("unexpected error: %v", err)
				}
			}
		})
	})

	b.Run("HuJSON", func(b *testing.B) {
		b.Run("Standardize", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := hujson.Standardize(append([]byte(nil), input...)); err != nil {
					b.Fatalf("unexpected error: %v", err)
				}
			}
		})
	})

	b.Run("Spac", func(b *testing.B) {
		b.Run("Source", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				src := jsonsrc.NewSource(bytes.NewReader(input))
				for {
					if _, err := src.Next(); err == io.EOF {
						break
					} else if err != nil {
						b.Fatalf("unexpected error: %v", err)
					}
				}
			}
		})
	})
}

// TestStandardizeThenScan documents the intended use of hujson alongside
// Source: accept comments and trailing commas at the ingest boundary, then
// hand the standardized bytes to the strict scanner.
func TestStandardizeThenScan(t *testing.T) {
	relaxed := []byte(`{
		// a relaxed document
		"title": "Dune",
		"year": 1965, // trailing comma below
	}`)
	strict, err := hujson.Standardize(relaxed)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	src := jsonsrc.NewSource(bytes.NewReader(strict))
	var kinds []jsonsrc.Kind
	for {
		e, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		kinds = append(kinds, e.Kind)
	}
	want := []jsonsrc.Kind{
		jsonsrc.ObjectStart,
		jsonsrc.FieldStart, jsonsrc.JString,
		jsonsrc.FieldStart, jsonsrc.JNumber,
		jsonsrc.ObjectEnd,
	}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}
