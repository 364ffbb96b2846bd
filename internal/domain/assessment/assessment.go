// Package assessment holds the immutable catalog entry.
package assessment

import (
	"fmt"
	"regexp"
	"strings"
)

// Support is a Yes/No capability flag.
type Support string

const (
	// SupportYes indicates the capability is available.
	SupportYes Support = "Yes"
	// SupportNo indicates the capability is not available.
	SupportNo Support = "No"
)

// ParseSupport accepts Yes/No in any case, plus Y/N and true/false.
func ParseSupport(s string) (Support, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return SupportYes, nil
	case "no", "n", "false":
		return SupportNo, nil
	default:
		return "", fmt.Errorf("invalid support value %q (expected Yes or No)", s)
	}
}

// testTypeCodes maps catalog one-letter codes to category names.
var testTypeCodes = map[string]string{
	"A": "Ability & Aptitude",
	"B": "Biodata & Situational Judgement",
	"C": "Competencies",
	"D": "Development & 360",
	"E": "Assessment Exercises",
	"K": "Knowledge & Skills",
	"P": "Personality & Behavior",
	"S": "Simulations",
}

// ParseTestTypes splits a comma-separated test type column and expands one-letter codes.
// Duplicates are dropped, order is kept.
func ParseTestTypes(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if name, ok := testTypeCodes[strings.ToUpper(p)]; ok && len(p) == 1 {
			p = name
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Record is a catalog entry. It is created once at load time and never mutated.
type Record struct {
	id          int
	title       string
	description string
	duration    int
	testTypes   []string
	url         string
	remote      Support
	adaptive    Support
}

// New validates fields and creates a record. id is the row position in the corpus.
func New(
	id int, title, description string, duration int,
	testTypes []string, url string, remote, adaptive Support,
) (Record, error) {
	if id < 0 {
		return Record{}, fmt.Errorf("id must be non-negative, got %d", id)
	}
	if strings.TrimSpace(title) == "" {
		return Record{}, fmt.Errorf("title is required")
	}
	if duration < 0 {
		return Record{}, fmt.Errorf("duration must be non-negative, got %d", duration)
	}
	if remote != SupportYes && remote != SupportNo {
		return Record{}, fmt.Errorf("invalid remote support %q", remote)
	}
	if adaptive != SupportYes && adaptive != SupportNo {
		return Record{}, fmt.Errorf("invalid adaptive support %q", adaptive)
	}

	types := make([]string, len(testTypes))
	copy(types, testTypes)

	return Record{
		id:          id,
		title:       title,
		description: description,
		duration:    duration,
		testTypes:   types,
		url:         url,
		remote:      remote,
		adaptive:    adaptive,
	}, nil
}

// ID returns the row position in the corpus.
func (r Record) ID() int { return r.id }

// Title returns the assessment name.
func (r Record) Title() string { return r.title }

// Description returns the assessment description.
func (r Record) Description() string { return r.description }

// Duration returns the completion time in minutes.
func (r Record) Duration() int { return r.duration }

// TestTypes returns a copy of the category names.
func (r Record) TestTypes() []string {
	out := make([]string, len(r.testTypes))
	copy(out, r.testTypes)
	return out
}

// TestType returns the categories joined the way the catalog stores them.
func (r Record) TestType() string { return strings.Join(r.testTypes, ", ") }

// URL returns the catalog page URL.
func (r Record) URL() string { return r.url }

// RemoteSupport reports remote testing support.
func (r Record) RemoteSupport() Support { return r.remote }

// AdaptiveSupport reports adaptive/IRT support.
func (r Record) AdaptiveSupport() Support { return r.adaptive }

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText replaces punctuation with spaces and collapses whitespace.
func CleanText(s string) string {
	s = nonWordRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// EmbeddingText is the canonical text the corpus embedding is computed from.
func (r Record) EmbeddingText() string {
	return CleanText(r.title) + " " + CleanText(r.description) + " " + r.TestType()
}
