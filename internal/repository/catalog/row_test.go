package catalog

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
)

func validRow() Row {
	return Row{
		Title:       " Java 8 (New) ",
		Description: "Multi-choice test.",
		Duration:    " 18 ",
		TestType:    "K, S",
		URL:         "https://example.com/java8",
		Remote:      "Yes",
		Adaptive:    "no",
	}
}

func TestRowToRecord_Valid(t *testing.T) {
	rec, err := validRow().ToRecord(4, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != 4 || rec.Title() != "Java 8 (New)" || rec.Duration() != 18 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.TestType() != "Knowledge & Skills, Simulations" {
		t.Errorf("unexpected test type %q", rec.TestType())
	}
	if rec.AdaptiveSupport() != assessment.SupportNo {
		t.Errorf("unexpected adaptive %q", rec.AdaptiveSupport())
	}
}

func TestRowToRecord_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Row)
		column string
	}{
		{"non-integer duration", func(r *Row) { r.Duration = "about 20" }, ColDuration},
		{"empty duration", func(r *Row) { r.Duration = "" }, ColDuration},
		{"negative duration", func(r *Row) { r.Duration = "-1" }, ColDuration},
		{"bad remote", func(r *Row) { r.Remote = "maybe" }, ColRemote},
		{"bad adaptive", func(r *Row) { r.Adaptive = "" }, ColAdaptive},
		{"empty title", func(r *Row) { r.Title = "  " }, ColTitle},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(&row)
			_, err := row.ToRecord(0, 9)

			var ce *domain.CorpusError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CorpusError, got %v", err)
			}
			if ce.Row != 9 || ce.Column != tc.column {
				t.Errorf("unexpected location row=%d column=%q", ce.Row, ce.Column)
			}
			if !errors.Is(err, domain.ErrInvalidCorpus) {
				t.Error("expected ErrInvalidCorpus")
			}
		})
	}
}
