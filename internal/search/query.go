package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Result limits.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params configures a user search.
type Params struct {
	Query     string
	ExcludeID string // omitted from results when set
	Limit     int
}

// Hit is a matched user.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Search returns users matching params.Query by name, username or email,
// best match first. Short queries still match by prefix.
func (s *SearchIndex) Search(ctx context.Context, params Params) ([]Hit, error) {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return []Hit{}, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(q, params.ExcludeID), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// buildQuery ORs word matches on name with prefix and fuzzy matches on
// every field, then removes excludeID.
func buildQuery(q, excludeID string) query.Query {
	lower := strings.ToLower(q)

	nameMatch := bleve.NewMatchQuery(q)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	usernameExact := bleve.NewTermQuery(lower)
	usernameExact.SetField("username")
	usernameExact.SetBoost(4.0)

	emailExact := bleve.NewTermQuery(lower)
	emailExact.SetField("email")
	emailExact.SetBoost(4.0)

	textQueries := []query.Query{nameMatch, usernameExact, emailExact}

	for _, field := range []string{"name", "username", "email"} {
		prefix := bleve.NewPrefixQuery(lower)
		prefix.SetField(field)
		prefix.SetBoost(1.5)
		textQueries = append(textQueries, prefix)
	}

	if len(lower) >= 3 {
		for _, field := range []string{"name", "username"} {
			fuzzy := bleve.NewFuzzyQuery(lower)
			fuzzy.SetField(field)
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(0.8)
			textQueries = append(textQueries, fuzzy)
		}
	}

	match := bleve.NewDisjunctionQuery(textQueries...)
	if excludeID == "" {
		return match
	}

	bq := bleve.NewBooleanQuery()
	bq.AddMust(match)
	bq.AddMustNot(bleve.NewDocIDQuery([]string{excludeID}))
	return bq
}
