// Package catalog holds the row mapping shared by the corpus loaders.
package catalog

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
)

// Column names of the catalog table.
const (
	ColTitle       = "title"
	ColDescription = "description"
	ColDuration    = "duration"
	ColTestType    = "test_type"
	ColURL         = "url"
	ColRemote      = "remote_support"
	ColAdaptive    = "adaptive_support"
)

// RequiredColumns must be present in every source.
var RequiredColumns = []string{ColTitle, ColURL, ColDuration, ColRemote, ColAdaptive}

// Row is one catalog row before validation.
type Row struct {
	Title       string
	Description string
	Duration    string
	TestType    string
	URL         string
	Remote      string
	Adaptive    string
}

// ToRecord validates r. line is the 1-based source row used in errors; the record
// id is its position among loaded records.
func (r Row) ToRecord(id, line int) (assessment.Record, error) {
	durText := strings.TrimSpace(r.Duration)
	duration, err := strconv.Atoi(durText)
	if err != nil {
		return assessment.Record{}, domain.NewCorpusError(line, ColDuration, "not an integer: "+strconv.Quote(durText))
	}
	if duration < 0 {
		return assessment.Record{}, domain.NewCorpusError(line, ColDuration, "negative: "+durText)
	}

	remote, err := assessment.ParseSupport(r.Remote)
	if err != nil {
		return assessment.Record{}, domain.NewCorpusError(line, ColRemote, err.Error())
	}
	adaptive, err := assessment.ParseSupport(r.Adaptive)
	if err != nil {
		return assessment.Record{}, domain.NewCorpusError(line, ColAdaptive, err.Error())
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		return assessment.Record{}, domain.NewCorpusError(line, ColTitle, "empty")
	}

	rec, err := assessment.New(id, title, strings.TrimSpace(r.Description), duration,
		assessment.ParseTestTypes(r.TestType), strings.TrimSpace(r.URL), remote, adaptive)
	if err != nil {
		return assessment.Record{}, domain.NewCorpusError(line, "", err.Error())
	}
	return rec, nil
}
