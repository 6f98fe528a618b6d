package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupDecoding(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF8", "latin1", "Latin-1", "iso-8859-1", "ISO_8859-1", "cp1252", "windows-1252", "ISO-8859-15"} {
		t.Run(name, func(t *testing.T) {
			d, err := LookupDecoding(name)
			require.NoError(t, err)
			assert.Equal(t, name, d.Name)
		})
	}
}

func TestLookupDecoding_Unknown(t *testing.T) {
	_, err := LookupDecoding("klingon-8")
	assert.Error(t, err)
}

func TestStrictUTF8(t *testing.T) {
	d, err := LookupDecoding("utf-8")
	require.NoError(t, err)

	out, err := d.Decode([]byte("Café"))
	require.NoError(t, err)
	assert.Equal(t, "Café", string(out))

	_, err = d.Decode([]byte{'C', 'a', 'f', 0xE9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
	assert.Contains(t, err.Error(), "byte 3")
}

func TestLatin1(t *testing.T) {
	d, err := LookupDecoding("latin1")
	require.NoError(t, err)

	out, err := d.Decode([]byte{'C', 'a', 'f', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "Café", string(out))
}

func TestNewDecodingLadder(t *testing.T) {
	ladder, err := NewDecodingLadder(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultEncodings, ladder.Names())

	_, err = NewDecodingLadder([]string{"utf-8", "nope-9"})
	assert.Error(t, err)
}

func TestDecodingLadder_Decode(t *testing.T) {
	ladder, err := NewDecodingLadder([]string{"utf-8", "latin1"})
	require.NoError(t, err)

	t.Run("utf-8 wins when valid", func(t *testing.T) {
		out, used, err := ladder.Decode([]byte("Café"))
		require.NoError(t, err)
		assert.Equal(t, "utf-8", used)
		assert.Equal(t, "Café", string(out))
	})

	t.Run("falls back to latin1", func(t *testing.T) {
		out, used, err := ladder.Decode([]byte{'C', 'a', 'f', 0xE9})
		require.NoError(t, err)
		assert.Equal(t, "latin1", used)
		assert.Equal(t, "Café", string(out))
	})

	t.Run("utf-8 drops byte order mark", func(t *testing.T) {
		out, used, err := ladder.Decode(append([]byte{0xEF, 0xBB, 0xBF}, "Café"...))
		require.NoError(t, err)
		assert.Equal(t, "utf-8", used)
		assert.Equal(t, "Café", string(out))
	})

	t.Run("latin1 keeps leading EF BB BF as text", func(t *testing.T) {
		out, used, err := ladder.Decode([]byte{0xEF, 0xBB, 0xBF, 'C', 'a', 'f', 0xE9})
		require.NoError(t, err)
		assert.Equal(t, "latin1", used)
		assert.Equal(t, "ï»¿Café", string(out))
	})
}

func TestDecodingLadder_AllFail(t *testing.T) {
	ladder, err := NewDecodingLadder([]string{"utf-8"})
	require.NoError(t, err)

	_, _, err = ladder.Decode([]byte{0xFF, 0xFE, 0x00})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
	assert.Contains(t, err.Error(), "utf-8")
}

func TestDecodingLadder_Empty(t *testing.T) {
	_, _, err := DecodingLadder{}.Decode([]byte("x"))
	assert.Error(t, err)
}
