package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/JonMunkholm/restaurants/internal/logging"
	"github.com/JonMunkholm/restaurants/internal/schema"
	"github.com/google/uuid"
)

// DefaultMaxBytes is the largest source Load reads (256MB).
const DefaultMaxBytes int64 = 256 * 1024 * 1024

// ContextCheckInterval is how often, in rows, a load checks for cancellation.
var ContextCheckInterval = 1000

// LoadOptions controls how a source file is read.
type LoadOptions struct {
	Ladder   DecodingLadder // Tried in order; nil means DefaultEncodings
	Comma    rune           // Field delimiter; 0 means ','
	MaxBytes int64          // Read limit; <= 0 means DefaultMaxBytes
}

func (o LoadOptions) withDefaults() (LoadOptions, error) {
	if o.Ladder == nil {
		ladder, err := NewDecodingLadder(nil)
		if err != nil {
			return o, err
		}
		o.Ladder = ladder
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	return o, nil
}

// Load reads, decodes, validates and coerces the dataset at path.
func Load(path string, opts LoadOptions) (*Table, error) {
	return LoadContext(context.Background(), path, opts)
}

// LoadContext is Load with cancellation. Any error is a *LoadError.
func LoadContext(ctx context.Context, path string, opts LoadOptions) (t *Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = unexpected(path, fmt.Errorf("panic: %v", r))
		}
	}()

	opts, err = opts.withDefaults()
	if err != nil {
		return nil, unexpected(path, err)
	}

	raw, size, err := readFile(path, opts.MaxBytes)
	if err != nil {
		return nil, err
	}

	text, encoding, err := opts.Ladder.Decode(raw)
	if err != nil {
		return nil, &LoadError{Kind: KindDecode, Path: path, Tried: opts.Ladder.Names(), Err: err}
	}

	header, records, err := parseCSV(ctx, text, opts.Comma)
	if err != nil {
		return nil, unexpected(path, err)
	}
	if header == nil || len(records) == 0 {
		return nil, &LoadError{Kind: KindEmpty, Path: path}
	}

	canonical := schema.Canonicalize(header)
	if err := schema.Validate(canonical, schema.Required); err != nil {
		var mfe *schema.MissingFieldsError
		if errors.As(err, &mfe) {
			return nil, &LoadError{
				Kind:      KindMissingFields,
				Path:      path,
				Missing:   mfe.Missing,
				Available: mfe.Available,
				Err:       err,
			}
		}
		return nil, unexpected(path, err)
	}

	idx, dups := schema.MakeHeaderIndex(canonical)
	if len(dups) > 0 {
		logging.FromContext(ctx).Warn("duplicate dataset columns, using first occurrence",
			"path", path,
			"columns", dups,
		)
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, unexpected(path, err)
			}
		}
		rows = append(rows, buildRow(rec.fields, idx, rec.line))
	}

	return &Table{
		rows:     rows,
		columns:  canonical,
		source:   path,
		encoding: encoding,
		loadID:   uuid.New(),
		loadedAt: time.Now(),
		bytes:    size,
	}, nil
}

// LoadSnapshot never fails: a load error yields an unusable snapshot that
// carries it. Startup and reloads both go through here.
func LoadSnapshot(ctx context.Context, path string, opts LoadOptions) *Snapshot {
	log := logging.FromContext(ctx)
	start := time.Now()

	table, err := LoadContext(ctx, path, opts)
	if err != nil {
		log.Error("dataset load failed",
			"path", path,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return FailedSnapshot(path, err)
	}

	log.Info("dataset loaded",
		"path", path,
		"rows", table.Len(),
		"encoding", table.Encoding(),
		"bytes", table.Bytes(),
		"load_id", table.LoadID().String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return NewSnapshot(table)
}

func readFile(path string, maxBytes int64) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, &LoadError{Kind: KindNotFound, Path: path, Err: err}
		}
		return nil, 0, unexpected(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, unexpected(path, err)
	}
	if info.IsDir() {
		return nil, 0, unexpected(path, fmt.Errorf("%s is a directory", path))
	}

	counter := NewCountingReader(f)
	data, tooLarge, err := readSource(counter, maxBytes)
	if err != nil {
		return nil, 0, unexpected(path, err)
	}
	if tooLarge {
		return nil, 0, unexpected(path, fmt.Errorf("file too large: exceeds %d bytes", maxBytes))
	}
	return data, counter.BytesRead, nil
}

type csvRecord struct {
	fields []string
	line   int
}

// parseCSV returns the header and the data records. A source with no header
// returns a nil header. Blank and whitespace-only lines are skipped; records
// of any width are kept. Stray quotes inside a field are taken literally, but
// a quoted field still open at end of input is an error.
func parseCSV(ctx context.Context, text []byte, comma rune) ([]string, []csvRecord, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		header            []string
		records           []csvRecord
		lastLine, lastCol int
	)
	for {
		if len(records)%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if header == nil {
				return nil, nil, fmt.Errorf("invalid csv header: %w", err)
			}
			return nil, nil, fmt.Errorf("invalid csv: %w", err)
		}
		lastLine, lastCol = r.FieldPos(len(fields) - 1)
		if blankRecord(fields) {
			continue
		}
		if header == nil {
			header = fields
			continue
		}
		line, _ := r.FieldPos(0)
		records = append(records, csvRecord{fields: fields, line: line})
	}

	if lastLine > 0 && unterminatedQuote(text, lastLine, lastCol) {
		return nil, nil, fmt.Errorf("invalid csv: line %d, column %d: quoted field not closed before end of file", lastLine, lastCol)
	}
	return header, records, nil
}

func blankRecord(fields []string) bool {
	return len(fields) == 1 && strings.TrimSpace(fields[0]) == ""
}

// unterminatedQuote reports whether the field starting at line:col (1-based,
// as returned by csv.Reader.FieldPos) opens a quote that runs to the end of
// text. The csv reader accepts such a field and swallows the rest of the file
// into it.
func unterminatedQuote(text []byte, line, col int) bool {
	off := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(text[off:], '\n')
		if i < 0 {
			return false
		}
		off += i + 1
	}
	off += col - 1
	if off < 0 || off >= len(text) || text[off] != '"' {
		return false
	}

	rest := bytes.TrimRight(text[off+1:], "\r\n")
	quotes := len(rest) - len(bytes.TrimRight(rest, `"`))
	return quotes%2 == 0
}
