package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/raseed-cloud/raseed/internal/db"
)

// Query runs a predicate search via FT.SEARCH.
func (s *Store) Query(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	queryStr, err := buildQuery(q.Predicates)
	if err != nil {
		return nil, err
	}

	args := []string{q.IndexName, queryStr}

	if q.SortBy != "" {
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, dir)
	}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseResult(raw)
}

// --- Result parsing ---

func parseResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery translates predicates into an FT.SEARCH query string.
// An empty predicate list matches everything.
func buildQuery(preds []db.Predicate) (string, error) {
	if len(preds) == 0 {
		return "*", nil
	}

	parts := make([]string, 0, len(preds))
	for i := range preds {
		part, err := buildPredicate(&preds[i])
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " "), nil
}

func buildPredicate(p *db.Predicate) (string, error) {
	if p.Field == "" {
		return "", fmt.Errorf("predicate field is required")
	}

	switch p.Kind {
	case db.PredicateTag:
		return buildTagPredicate(p)
	case db.PredicateNumeric:
		return buildNumericPredicate(p)
	}
	return "", fmt.Errorf("unknown predicate kind %d", p.Kind)
}

func buildTagPredicate(p *db.Predicate) (string, error) {
	if len(p.Values) == 0 {
		return "", fmt.Errorf("tag predicate %q requires at least one value", p.Field)
	}

	escaped := make([]string, len(p.Values))
	for i, v := range p.Values {
		escaped[i] = tagEscaper.Replace(v)
	}
	body := fmt.Sprintf("@%s:{%s}", p.Field, strings.Join(escaped, "|"))

	switch p.Op {
	case db.PredEq, db.PredIn:
		return body, nil
	case db.PredNe, db.PredNin:
		return "-" + body, nil
	}
	return "", fmt.Errorf("operator %q not supported on tag field %q", p.Op, p.Field)
}

func buildNumericPredicate(p *db.Predicate) (string, error) {
	n := formatNum(p.Num)
	switch p.Op {
	case db.PredGte:
		return fmt.Sprintf("@%s:[%s +inf]", p.Field, n), nil
	case db.PredGt:
		return fmt.Sprintf("@%s:[(%s +inf]", p.Field, n), nil
	case db.PredLte:
		return fmt.Sprintf("@%s:[-inf %s]", p.Field, n), nil
	case db.PredLt:
		return fmt.Sprintf("@%s:[-inf (%s]", p.Field, n), nil
	case db.PredEq:
		return fmt.Sprintf("@%s:[%s %s]", p.Field, n, n), nil
	case db.PredNe:
		return fmt.Sprintf("-@%s:[%s %s]", p.Field, n, n), nil
	case db.PredIn, db.PredNin:
		if len(p.Nums) == 0 {
			return "", fmt.Errorf("numeric %s predicate %q requires at least one value", p.Op, p.Field)
		}
		points := make([]string, len(p.Nums))
		for i, v := range p.Nums {
			pt := formatNum(v)
			points[i] = fmt.Sprintf("@%s:[%s %s]", p.Field, pt, pt)
		}
		group := "(" + strings.Join(points, " | ") + ")"
		if p.Op == db.PredNin {
			return "-" + group, nil
		}
		return group, nil
	}
	return "", fmt.Errorf("operator %q not supported on numeric field %q", p.Op, p.Field)
}

// formatNum renders a numeric bound without exponent notation.
func formatNum(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
