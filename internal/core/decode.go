package core

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrInvalidUTF8 is returned by the strict UTF-8 decoding.
var ErrInvalidUTF8 = errors.New("invalid utf-8 byte sequence")

// DefaultEncodings is the ladder tried when none is configured.
var DefaultEncodings = []string{"utf-8", "latin1", "iso-8859-1"}

// Decoding turns raw source bytes into UTF-8 text. It fails on input that is
// not valid in its encoding; it never substitutes characters.
type Decoding struct {
	Name   string
	decode func([]byte) ([]byte, error)
}

// Decode converts data to UTF-8.
func (d Decoding) Decode(data []byte) ([]byte, error) {
	return d.decode(data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// strictUTF8 validates data and drops a leading byte order mark. The mark is
// only removed here, once the bytes are known to be UTF-8; a later rung sees
// the file as written.
func strictUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return nil, fmt.Errorf("%w at byte %d", ErrInvalidUTF8, i)
		}
		i += size
	}
	return nil, ErrInvalidUTF8
}

func fromEncoding(enc encoding.Encoding) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(out) {
			return nil, ErrInvalidUTF8
		}
		return out, nil
	}
}

func encodingKey(name string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// LookupDecoding resolves an encoding name. The common names for UTF-8,
// Latin-1 and Windows-1252 are recognized directly; anything else is looked
// up in the IANA character set registry.
func LookupDecoding(name string) (Decoding, error) {
	switch encodingKey(name) {
	case "utf8":
		return Decoding{Name: name, decode: strictUTF8}, nil
	case "latin1", "l1", "iso88591", "iso885911987", "cp819", "ibm819":
		return Decoding{Name: name, decode: fromEncoding(charmap.ISO8859_1)}, nil
	case "cp1252", "windows1252":
		return Decoding{Name: name, decode: fromEncoding(charmap.Windows1252)}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return Decoding{}, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return Decoding{}, fmt.Errorf("unsupported encoding %q", name)
	}
	return Decoding{Name: name, decode: fromEncoding(enc)}, nil
}

// DecodingLadder is an ordered list of decodings. The first that succeeds wins.
type DecodingLadder []Decoding

// NewDecodingLadder resolves every name, failing on the first unknown one.
// An empty list yields DefaultEncodings.
func NewDecodingLadder(names []string) (DecodingLadder, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}
	ladder := make(DecodingLadder, 0, len(names))
	for _, name := range names {
		d, err := LookupDecoding(name)
		if err != nil {
			return nil, err
		}
		ladder = append(ladder, d)
	}
	return ladder, nil
}

// Names returns the encoding names in ladder order.
func (l DecodingLadder) Names() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.Name
	}
	return out
}

// Decode tries each decoding in order and returns the text from the first
// that succeeds along with its name. If all fail, the last error is returned.
func (l DecodingLadder) Decode(data []byte) ([]byte, string, error) {
	if len(l) == 0 {
		return nil, "", errors.New("no encodings configured")
	}
	var lastErr error
	for _, d := range l {
		out, err := d.Decode(data)
		if err == nil {
			return out, d.Name, nil
		}
		lastErr = fmt.Errorf("%s: %w", d.Name, err)
	}
	return nil, "", lastErr
}
