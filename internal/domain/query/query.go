// Package query holds the structured constraints extracted from a free-text query.
package query

import "strings"

// Parameters is the per-request constraint set. Only the duration limit filters results;
// skills and level are informational.
type Parameters struct {
	durationLimit int
	skills        []string
	level         string
}

// Neutral returns the parameters that impose no constraint.
func Neutral() Parameters {
	return Parameters{skills: []string{}}
}

// New creates parameters. durationLimit <= 0 means no limit. Skills are trimmed,
// empty entries dropped and duplicates removed case-insensitively.
func New(durationLimit int, skills []string, level string) Parameters {
	if durationLimit < 0 {
		durationLimit = 0
	}

	clean := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, s)
	}

	return Parameters{
		durationLimit: durationLimit,
		skills:        clean,
		level:         strings.TrimSpace(level),
	}
}

// DurationLimit returns the maximum duration in minutes and whether it is set.
func (p Parameters) DurationLimit() (int, bool) {
	return p.durationLimit, p.durationLimit > 0
}

// Skills returns a copy of the extracted skills.
func (p Parameters) Skills() []string {
	out := make([]string, len(p.skills))
	copy(out, p.skills)
	return out
}

// Level returns the job level, "" when unknown.
func (p Parameters) Level() string { return p.level }

// IsNeutral reports whether no constraint or hint was extracted.
func (p Parameters) IsNeutral() bool {
	return p.durationLimit == 0 && len(p.skills) == 0 && p.level == ""
}
