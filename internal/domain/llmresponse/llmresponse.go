// Package llmresponse parses untrusted completion text into typed values.
// Every guard against malformed model output lives here.
package llmresponse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/domain/query"
)

// ExtractJSON strips markdown code fences and surrounding backticks.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// span cuts raw down to the outermost open..close pair, dropping surrounding prose.
func span(raw string, open, closing byte) (string, bool) {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, closing)
	if start == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidLLMOutput, fmt.Sprintf(format, args...))
}

type parametersPayload struct {
	DurationLimit json.RawMessage `json:"duration_limit"`
	Skills        json.RawMessage `json:"skills"`
	Level         json.RawMessage `json:"level"`
}

// ParseParameters decodes the extractor's JSON object.
// duration_limit must be null, absent or a positive integer (a numeric string is accepted).
func ParseParameters(raw string) (query.Parameters, error) {
	body, ok := span(ExtractJSON(raw), '{', '}')
	if !ok {
		return query.Parameters{}, invalid("no JSON object in response")
	}

	var p parametersPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return query.Parameters{}, invalid("decode parameters: %v", err)
	}

	limit, err := parseDuration(p.DurationLimit)
	if err != nil {
		return query.Parameters{}, err
	}
	skills, err := parseSkills(p.Skills)
	if err != nil {
		return query.Parameters{}, err
	}
	level, err := parseLevel(p.Level)
	if err != nil {
		return query.Parameters{}, err
	}

	return query.New(limit, skills, level), nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func parseDuration(raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return 0, nil
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, invalid("decode duration_limit: %v", err)
	}

	var n int64
	switch val := v.(type) {
	case json.Number:
		i, ok := integral(string(val))
		if !ok {
			return 0, invalid("duration_limit %s is not an integer", val)
		}
		n = i
	case string:
		s := strings.TrimSpace(val)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
			return 0, nil
		}
		i, ok := integral(s)
		if !ok {
			return 0, invalid("duration_limit %q is not an integer", val)
		}
		n = i
	default:
		return 0, invalid("duration_limit has unsupported type %T", v)
	}

	if n <= 0 {
		return 0, invalid("duration_limit must be positive, got %d", n)
	}
	if n > math.MaxInt32 {
		return 0, invalid("duration_limit %d out of range", n)
	}
	return int(n), nil
}

// integral accepts "40" and "40.0" but not "40.5".
func integral(s string) (int64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseSkills(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, invalid("decode skills: %v", err)
	}

	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	case string:
		return []string{val}, nil
	default:
		return nil, invalid("skills has unsupported type %T", v)
	}
}

func parseLevel(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalid("level must be a string")
	}
	if strings.EqualFold(strings.TrimSpace(s), "null") {
		return "", nil
	}
	return s, nil
}

// ParseRanking decodes the reranker's index list. Both a bare array and an object
// with a "ranking" array are accepted. Non-integer entries are dropped; range and
// duplicate checks are left to SelectRanking.
func ParseRanking(raw string) ([]int, error) {
	text := ExtractJSON(raw)

	items, err := rankingItems(text)
	if err != nil {
		return nil, err
	}

	out := make([]int, 0, len(items))
	for _, item := range items {
		num, ok := item.(json.Number)
		if !ok {
			continue
		}
		i, ok := integral(string(num))
		if !ok || i > math.MaxInt32 || i < math.MinInt32 {
			continue
		}
		out = append(out, int(i))
	}
	return out, nil
}

func rankingItems(text string) ([]any, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		body, ok := span(trimmed, '{', '}')
		if !ok {
			return nil, invalid("unterminated JSON object")
		}
		var obj map[string]any
		if err := decodeNumbers(body, &obj); err != nil {
			return nil, invalid("decode ranking object: %v", err)
		}
		for _, key := range []string{"ranking", "indices"} {
			if arr, ok := obj[key].([]any); ok {
				return arr, nil
			}
		}
		return nil, invalid("ranking object has no index array")
	}

	body, ok := span(trimmed, '[', ']')
	if !ok {
		return nil, invalid("no JSON array in response")
	}
	var arr []any
	if err := decodeNumbers(body, &arr); err != nil {
		return nil, invalid("decode ranking: %v", err)
	}
	return arr, nil
}

func decodeNumbers(body string, dst any) error {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	return dec.Decode(dst)
}

// SelectRanking keeps indices within [0, n), drops repeats (first wins) and
// truncates to budget.
func SelectRanking(indices []int, n, budget int) []int {
	if budget <= 0 || n <= 0 {
		return []int{}
	}
	out := make([]int, 0, min(budget, len(indices)))
	seen := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
		if len(out) == budget {
			break
		}
	}
	return out
}
