package candidate

import (
	"testing"

	"github.com/kailas-cloud/assessrec/internal/domain/assessment"
)

func mustRecord(t *testing.T, id int, title string) assessment.Record {
	t.Helper()
	r, err := assessment.New(id, title, "", 10, nil, "", assessment.SupportYes, assessment.SupportNo)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return r
}

func TestCandidate_Accessors(t *testing.T) {
	c := New(mustRecord(t, 7, "Java 8"), 0.75, 2)
	if c.Index() != 7 || c.SourceRank() != 2 || c.Score() != 0.75 {
		t.Errorf("unexpected candidate %+v", c)
	}
	if c.Record().Title() != "Java 8" {
		t.Errorf("unexpected title %q", c.Record().Title())
	}
}

func TestHead(t *testing.T) {
	cs := []Candidate{
		New(mustRecord(t, 0, "a"), 0.9, 0),
		New(mustRecord(t, 1, "b"), 0.8, 1),
		New(mustRecord(t, 2, "c"), 0.7, 2),
	}

	head := Head(cs, 2)
	if got := Titles(head); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected head %v", got)
	}
	head[0] = cs[2]
	if cs[0].Record().Title() != "a" {
		t.Error("Head must not alias the input")
	}

	if len(Head(cs, 10)) != 3 {
		t.Error("Head larger than input must return everything")
	}
	if len(Head(cs, -1)) != 0 {
		t.Error("negative n must return empty")
	}
}
