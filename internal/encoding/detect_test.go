package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/finplan/internal/encoding"
)

const header = "Descrição;Montante\n"

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), r.Charset
}

func TestNewUTF8Reader(t *testing.T) {
	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       []byte
		want        string
		wantCharset string
	}{
		{
			name:        "utf-8 passthrough",
			input:       []byte("Descrição;Montante\nCafé;12,50\nOperação;-3,00\n"),
			want:        "Descrição;Montante\nCafé;12,50\nOperação;-3,00\n",
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "utf-8 bom stripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, header...),
			want:        header,
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "utf-16 little endian",
			input:       utf16,
			want:        header,
			wantCharset: encoding.CharsetUTF16LE,
		},
		{
			name:  "windows-1252",
			input: latin1,
			want:  header,
		},
		{
			name:        "empty",
			input:       nil,
			want:        "",
			wantCharset: encoding.CharsetUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := readAll(t, tt.input)

			assert.Equal(t, tt.want, got)

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}
		})
	}
}

func TestNewUTF8Reader_LongInput(t *testing.T) {
	row := []byte("30-01-2026;CAFÉ CENTRAL;-10,00\n")
	input := append([]byte(header), bytes.Repeat(row, 500)...)

	got, _ := readAll(t, input)
	assert.Equal(t, string(input), got)
}
