package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pillbox/internal/encoding"
)

func readAll(t *testing.T, in []byte) string {
	t.Helper()

	r, err := encoding.ToUTF8(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestToUTF8_Passthrough(t *testing.T) {
	input := "name,category\nCrème hydratante,Dermo\nParacétamol,Analgésique\n"
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestToUTF8_Windows1252(t *testing.T) {
	// "Paracétamol\n" with é = 0xE9 in Windows-1252.
	in := []byte{'P', 'a', 'r', 'a', 'c', 0xE9, 't', 'a', 'm', 'o', 'l', '\n'}
	assert.Equal(t, "Paracétamol\n", readAll(t, in))
}

func TestToUTF8_StripsUTF8BOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,price\n")...)
	assert.Equal(t, "name,price\n", readAll(t, in))
}

func TestToUTF8_UTF16LE(t *testing.T) {
	in := []byte{0xFF, 0xFE, 'o', 0, 'k', 0, '\n', 0}
	assert.Equal(t, "ok\n", readAll(t, in))
}

func TestToUTF8_Empty(t *testing.T) {
	assert.Equal(t, "", readAll(t, nil))
}
