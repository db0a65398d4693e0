package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/openlistings/searchd/internal/db"
)

// scoreField is the pipeline property added by FT.AGGREGATE ADDSCORES.
const scoreField = "__score"

// keyField is the document key property loadable in FT.AGGREGATE.
const keyField = "__key"

// SearchSorted runs a paginated FT.SEARCH ordered by a single sortable field.
func (s *Store) SearchSorted(ctx context.Context, q *db.SortedQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.SortBy == "" {
		return nil, fmt.Errorf("sort field is required")
	}

	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}

	args := []string{
		q.IndexName, buildQuery(q.Filter),
		"SORTBY", q.SortBy, dir,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw)
}

// SearchRanked runs a paginated FT.AGGREGATE ordered by descending relevance
// score with a sortable numeric field as descending tie-break. Entries carry
// the document key and score only; callers hydrate documents separately.
func (s *Store) SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.TieBreak == "" {
		return nil, fmt.Errorf("tie-break field is required")
	}

	args := []string{
		q.IndexName, buildQuery(q.Filter),
		"ADDSCORES",
		"LOAD", "2", "@" + keyField, "@" + q.TieBreak,
		"SORTBY", "4", "@" + scoreField, "DESC", "@" + q.TieBreak, "DESC",
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseRankedResult(raw)
}

// SearchCount returns the full matching count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index string, f db.FilterSpec) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(index, buildQuery(f), "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// GroupCountMulti runs all grouped-count branches in a single DoMulti
// round-trip: one FT.AGGREGATE GROUPBY/REDUCE COUNT per request. Results
// align positionally with reqs.
func (s *Store) GroupCountMulti(ctx context.Context, reqs []db.GroupCountRequest) ([]db.GroupCountResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(reqs))
	for i, req := range reqs {
		args := []string{
			req.IndexName, buildQuery(req.Filter),
			"GROUPBY", "1", "@" + req.GroupBy,
			"REDUCE", "COUNT", "0", "AS", "count",
			"SORTBY", "4", "@count", "DESC", "@" + req.GroupBy, "ASC",
			"LIMIT", "0", strconv.Itoa(req.Limit),
			"DIALECT", "2",
		}
		cmds[i] = s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]db.GroupCountResult, len(results))

	for i, res := range results {
		raw, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: fmt.Errorf("group %s: %w", reqs[i].GroupBy, err)}
		}
		out[i] = parseGroupCountResult(raw, reqs[i].GroupBy)
	}

	return out, nil
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
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

func parseRankedResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(raw)-1)
	// [total, row1, row2, ...] where each row is a flat name/value pair array
	for i := 1; i < len(raw); i++ {
		pairs, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(pairs)

		key, ok := fields[keyField]
		if !ok {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: fields}
		if scoreStr, ok := fields[scoreField]; ok {
			if score, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = score
			}
			delete(entry.Fields, scoreField)
		}
		delete(entry.Fields, keyField)

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseGroupCountResult extracts (value, count) buckets. Rows whose group
// value is nil (documents with no recorded value for the field) fail the
// string conversion, never enter the field map, and are dropped here.
func parseGroupCountResult(raw []rueidis.RedisMessage, groupBy string) db.GroupCountResult {
	var res db.GroupCountResult

	for i := 1; i < len(raw); i++ {
		pairs, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(pairs)

		value, ok := fields[groupBy]
		if !ok {
			continue
		}
		count, err := strconv.Atoi(fields["count"])
		if err != nil {
			continue
		}

		res.Groups = append(res.Groups, db.Group{Value: value, Count: count})
	}

	return res
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

// buildQuery translates a FilterSpec into an FT query string. Tag and range
// clauses are ANDed; free text is appended untargeted so it matches every
// TEXT field of the index.
func buildQuery(f db.FilterSpec) string {
	if f.IsEmpty() {
		return "*"
	}

	var parts []string

	for _, tag := range f.Tags {
		parts = append(parts, buildTagFilter(tag))
	}
	for _, r := range f.Ranges {
		parts = append(parts, buildRangeFilter(r))
	}
	if f.Text != "" {
		parts = append(parts, "("+escapeQuery(f.Text)+")")
	}

	return strings.Join(parts, " ")
}

func buildTagFilter(tag db.TagFilter) string {
	escaped := make([]string, 0, len(tag.Values))
	for _, v := range tag.Values {
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	return fmt.Sprintf("@%s:{%s}", tag.Field, strings.Join(escaped, "|"))
}

func buildRangeFilter(r db.RangeFilter) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.Min != nil {
		minBound = fmt.Sprintf("%g", *r.Min)
	}
	if r.Max != nil {
		maxBound = fmt.Sprintf("%g", *r.Max)
	}

	return fmt.Sprintf("@%s:[%s %s]", r.Field, minBound, maxBound)
}

// --- Query helpers ---

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
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
