package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/annrecall/blobstore"
)

// DefaultTextLimit is the number of vectors read from a text file when no limit is given.
const DefaultTextLimit = 10_000

// maxLineSize bounds a single text line; 4096-dim vectors fit comfortably.
const maxLineSize = 16 << 20

// ParseError reports a malformed line of a text vectors file.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dataset: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadText parses the text vectors format from r.
// At most limit vectors are read; limit <= 0 reads everything.
// Fence lines starting with "===" and blank lines are skipped.
func ReadText(r io.Reader, limit int) (*Memory, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	m := NewMemory(0)
	line := 0
	for sc.Scan() {
		line++
		if limit > 0 && m.Len() >= limit {
			break
		}

		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "===") {
			continue
		}

		id, vec, err := parseTextLine(text, m.Dimension())
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		if err := m.Add(id, vec); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		return nil, ErrEmpty
	}
	return m, nil
}

func parseTextLine(text string, dimHint int) (uint32, []float32, error) {
	idPart, vecPart, ok := strings.Cut(text, ",")
	if !ok {
		return 0, nil, fmt.Errorf("missing ',' after identifier")
	}

	id, err := strconv.ParseUint(strings.TrimSpace(idPart), 10, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("identifier: %w", err)
	}

	vecPart = strings.TrimFunc(vecPart, func(r rune) bool {
		return r == '[' || r == ']' || r == ' ' || r == '\t'
	})
	if vecPart == "" {
		return 0, nil, fmt.Errorf("vector %d is empty", id)
	}

	vec := make([]float32, 0, max(dimHint, 1))
	for field := range strings.SplitSeq(vecPart, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return 0, nil, fmt.Errorf("vector %d: %w", id, err)
		}
		vec = append(vec, float32(f))
	}
	return uint32(id), vec, nil
}

// OpenText reads a text vectors blob from store, decompressing by name suffix.
func OpenText(ctx context.Context, store blobstore.Store, name string, limit int) (*Memory, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	r, err := Decompress(rc, CompressionFor(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return ReadText(r, limit)
}

// WriteText writes ds in the text vectors format, fenced.
func WriteText(w io.Writer, ds Dataset) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("=== BEGIN vectors ===\n"); err != nil {
		return err
	}

	var buf []byte
	for id, vec := range ds.All() {
		buf = strconv.AppendUint(buf[:0], uint64(id), 10)
		buf = append(buf, ", ["...)
		for i, f := range vec {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = strconv.AppendFloat(buf, float64(f), 'g', -1, 32)
		}
		buf = append(buf, "]\n"...)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("=== END vectors ===\n"); err != nil {
		return err
	}
	return bw.Flush()
}
