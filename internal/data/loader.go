package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"
)

// LoadOptions selects which fields of a corpus file hold the two languages.
type LoadOptions struct {
	// Column is the parquet struct column holding one field per language.
	Column  string
	SrcLang string
	TgtLang string
}

// DefaultLoadOptions matches the Europarl parquet shards.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Column: "translation", SrcLang: "da", TgtLang: "en"}
}

// LoadFiles reads every path and concatenates the pairs in argument order.
// Files are read concurrently.
func LoadFiles(ctx context.Context, paths []string, opts LoadOptions) ([]Pair, error) {
	if len(paths) == 0 {
		return nil, errors.New("no corpus files given")
	}

	parts := make([][]Pair, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pairs, err := LoadFile(path, opts)
			if err != nil {
				return err
			}
			parts[i] = pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Pair
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}

// LoadFile reads one corpus file, choosing the format from its extension.
func LoadFile(path string, opts LoadOptions) ([]Pair, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return LoadParquet(path, opts)
	case ".csv":
		return LoadDelimited(path, ',', opts)
	case ".tsv":
		return LoadDelimited(path, '\t', opts)
	default:
		return nil, fmt.Errorf("unsupported corpus format: %s", path)
	}
}

// LoadParquet reads the <Column>.<SrcLang> and <Column>.<TgtLang> leaf
// columns of a parquet file. Values of any physical type are taken in their
// string form; nulls become empty strings.
func LoadParquet(path string, opts LoadOptions) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet %s: %w", path, err)
	}

	src, err := readColumn(pf, leafPath(opts.Column, opts.SrcLang))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tgt, err := readColumn(pf, leafPath(opts.Column, opts.TgtLang))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(src) != len(tgt) {
		return nil, fmt.Errorf("%s: column lengths differ (%d vs %d)", path, len(src), len(tgt))
	}

	pairs := make([]Pair, len(src))
	for i := range src {
		pairs[i] = Pair{Src: src[i], Tgt: tgt[i]}
	}
	return pairs, nil
}

func leafPath(column, lang string) []string {
	if column == "" {
		return []string{lang}
	}
	return append(strings.Split(column, "."), lang)
}

// readColumn returns every value of the leaf column at path across all row
// groups.
func readColumn(pf *parquet.File, path []string) ([]string, error) {
	leaf, ok := pf.Schema().Lookup(path...)
	if !ok {
		return nil, fmt.Errorf("column %q not found", strings.Join(path, "."))
	}

	out := make([]string, 0, pf.NumRows())
	for _, rg := range pf.RowGroups() {
		pages := rg.ColumnChunks()[leaf.ColumnIndex].Pages()
		for {
			page, err := pages.ReadPage()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				pages.Close()
				return nil, fmt.Errorf("failed to read page: %w", err)
			}

			values := make([]parquet.Value, page.NumValues())
			n, err := readValues(page.Values(), values)
			if err != nil {
				pages.Close()
				return nil, fmt.Errorf("failed to read values: %w", err)
			}
			for _, v := range values[:n] {
				if v.IsNull() {
					out = append(out, "")
					continue
				}
				out = append(out, v.String())
			}
		}
		if err := pages.Close(); err != nil {
			return nil, fmt.Errorf("failed to close pages: %w", err)
		}
	}
	return out, nil
}

// readValues fills values from r until it is full or r is exhausted.
func readValues(r parquet.ValueReader, values []parquet.Value) (int, error) {
	n := 0
	for n < len(values) {
		m, err := r.ReadValues(values[n:])
		n += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}

// LoadDelimited reads a CSV or TSV file whose header names the language
// columns (e.g. "da" and "en").
func LoadDelimited(path string, comma rune, opts LoadOptions) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	header := records[0]
	srcCol, tgtCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case opts.SrcLang:
			srcCol = i
		case opts.TgtLang:
			tgtCol = i
		}
	}
	if srcCol < 0 || tgtCol < 0 {
		return nil, fmt.Errorf("csv header %v lacks %q or %q", header, opts.SrcLang, opts.TgtLang)
	}

	pairs := make([]Pair, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("inconsistent number of columns at row %d", i+1)
		}
		pairs = append(pairs, Pair{Src: record[srcCol], Tgt: record[tgtCol]})
	}
	return pairs, nil
}
