package core

// streaming.go prepares raw CSV bytes for the csv reader.
//
// Exports from Windows tools often start with a UTF-8 byte order mark, and
// hand-edited files sometimes contain stray Latin-1 bytes. Both would end up
// inside the first header name or a location name, so every CSV stream is
// wrapped with:
//
//   - BOM removal (UTF-8 and UTF-16 BOMs are honoured)
//   - Replacement of invalid UTF-8 sequences with U+FFFD
//
// The transform works on the stream, so memory stays O(buffer) regardless of
// file size.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// WrapForDecoding wraps r so that reads yield BOM-free, valid UTF-8.
func WrapForDecoding(r io.Reader) io.Reader {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(r, decoder)
}
