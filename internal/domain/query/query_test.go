package query

import "testing"

func TestNeutral(t *testing.T) {
	p := Neutral()
	if _, ok := p.DurationLimit(); ok {
		t.Error("neutral parameters must not carry a duration limit")
	}
	if p.Skills() == nil || len(p.Skills()) != 0 {
		t.Errorf("expected empty non-nil skills, got %v", p.Skills())
	}
	if p.Level() != "" {
		t.Errorf("expected empty level, got %q", p.Level())
	}
	if !p.IsNeutral() {
		t.Error("expected IsNeutral")
	}
}

func TestNew_NormalizesSkills(t *testing.T) {
	p := New(45, []string{" Java ", "", "java", "SQL"}, " senior ")
	limit, ok := p.DurationLimit()
	if !ok || limit != 45 {
		t.Errorf("expected limit 45, got %d (%v)", limit, ok)
	}
	skills := p.Skills()
	if len(skills) != 2 || skills[0] != "Java" || skills[1] != "SQL" {
		t.Errorf("unexpected skills %v", skills)
	}
	if p.Level() != "senior" {
		t.Errorf("unexpected level %q", p.Level())
	}
	if p.IsNeutral() {
		t.Error("expected non-neutral parameters")
	}
}

func TestNew_NonPositiveLimitMeansNone(t *testing.T) {
	for _, v := range []int{0, -5} {
		if _, ok := New(v, nil, "").DurationLimit(); ok {
			t.Errorf("limit %d must be treated as absent", v)
		}
	}
}
