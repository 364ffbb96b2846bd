// Package evaluation scores the recommendation pipeline against a labelled query set.
package evaluation

import "strings"

// RecallAtK is the share of relevant items found in the first k predictions.
// Returns 0 when truth is empty.
func RecallAtK(predicted, truth []string, k int) float64 {
	relevant := toSet(truth)
	if len(relevant) == 0 || k <= 0 {
		return 0
	}

	hits := 0
	seen := make(map[string]struct{}, k)
	for _, p := range head(predicted, k) {
		key := normalizeURL(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := relevant[key]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// AveragePrecisionAtK sums precision at every relevant position in the first k
// predictions and divides by min(k, |truth|).
func AveragePrecisionAtK(predicted, truth []string, k int) float64 {
	relevant := toSet(truth)
	if len(relevant) == 0 || k <= 0 {
		return 0
	}

	var sum float64
	hits := 0
	seen := make(map[string]struct{}, k)
	for i, p := range head(predicted, k) {
		key := normalizeURL(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := relevant[key]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(min(k, len(relevant)))
}

func head(s []string, k int) []string {
	if len(s) > k {
		return s[:k]
	}
	return s
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		if key := normalizeURL(it); key != "" {
			out[key] = struct{}{}
		}
	}
	return out
}

// normalizeURL makes catalog links comparable: trailing slashes and case of the
// scheme and host do not matter.
func normalizeURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	scheme, rest, ok := strings.Cut(u, "://")
	if !ok {
		return u
	}
	host, path, _ := strings.Cut(rest, "/")
	out := strings.ToLower(scheme) + "://" + strings.ToLower(host)
	if path != "" {
		out += "/" + path
	}
	return out
}
