// Package encoding normalises uploaded bank statements to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO88599    = "ISO-8859-9"
	CharsetISO885915   = "ISO-8859-15"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Reader yields the UTF-8 decoding of its source. Charset names the
// encoding that was detected.
type Reader struct {
	io.Reader
	Charset string
}

// single-byte decoders chardet results are mapped onto
var legacy = map[string]encoding.Encoding{
	"ISO-8859-1":       charmap.Windows1252,
	CharsetWindows1252: charmap.Windows1252,
	CharsetISO88599:    charmap.ISO8859_9,
	CharsetISO885915:   charmap.ISO8859_15,
}

// NewUTF8Reader sniffs the start of r and decodes the content to UTF-8.
//
// Detection order:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. valid UTF-8 is passed through
//  3. chardet heuristics for the single-byte charsets banks export
//  4. Windows-1252
func NewUTF8Reader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if len(buf) == sniffLen {
		buf = trimPartialRune(buf)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return &Reader{Reader: br, Charset: CharsetUTF8}, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), CharsetUTF16LE), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), CharsetUTF16BE), nil
	case utf8.Valid(buf):
		return &Reader{Reader: br, Charset: CharsetUTF8}, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if result.Charset == CharsetUTF8 {
			return &Reader{Reader: br, Charset: CharsetUTF8}, nil
		}

		if enc, ok := legacy[result.Charset]; ok {
			name := result.Charset
			if name == "ISO-8859-1" {
				name = CharsetWindows1252
			}

			return decode(br, enc, name), nil
		}
	}

	return decode(br, charmap.Windows1252, CharsetWindows1252), nil
}

// trimPartialRune drops a multi-byte sequence cut off at the end of buf.
func trimPartialRune(buf []byte) []byte {
	i := len(buf) - 1
	for i > 0 && len(buf)-i < utf8.UTFMax && !utf8.RuneStart(buf[i]) {
		i--
	}

	if !utf8.FullRune(buf[i:]) {
		return buf[:i]
	}

	return buf
}

func decode(r io.Reader, enc encoding.Encoding, charset string) *Reader {
	return &Reader{Reader: transform.NewReader(r, enc.NewDecoder()), Charset: charset}
}
