// Package csvfile loads the assessment catalog from a CSV file with a header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
	"github.com/kailas-cloud/assessrec/internal/repository/catalog"
)

// Loader reads a catalog CSV. Columns are located by header name, in any order.
type Loader struct {
	path string
}

// New creates a loader for path.
func New(path string) *Loader {
	return &Loader{path: path}
}

// Load reads every row. The first invalid row aborts the load.
func (l *Loader) Load(ctx context.Context) ([]assessment.Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Read(ctx, f)
}

// Read parses catalog CSV from r.
func Read(ctx context.Context, r io.Reader) ([]assessment.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyCorpus
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", domain.ErrInvalidCorpus, err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []assessment.Record
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewCorpusError(line, "", err.Error())
		}

		rec, err := cols.row(fields).ToRecord(len(records), line)
		if err != nil {
			return nil, err //nolint:wrapcheck // CorpusError already carries location
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	return records, nil
}

type columns map[string]int

func indexColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, req := range catalog.RequiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, domain.NewCorpusError(0, req, "missing required column")
		}
	}
	return cols, nil
}

func (c columns) get(fields []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func (c columns) row(fields []string) catalog.Row {
	return catalog.Row{
		Title:       c.get(fields, catalog.ColTitle),
		Description: c.get(fields, catalog.ColDescription),
		Duration:    c.get(fields, catalog.ColDuration),
		TestType:    c.get(fields, catalog.ColTestType),
		URL:         c.get(fields, catalog.ColURL),
		Remote:      c.get(fields, catalog.ColRemote),
		Adaptive:    c.get(fields, catalog.ColAdaptive),
	}
}
