package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
)

// lowercaseKeyword indexes the whole value as one lowercased term, so
// "Alice_01" matches prefix and fuzzy queries for "ali" or "alice_0l".
const lowercaseKeyword = "lowercase_keyword"

// buildIndexMapping creates the mapping for user documents.
//
// name is tokenised into words without stemming; username and email are
// single lowercased terms.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	//nolint:errcheck // static analyzer definition
	_ = indexMapping.AddCustomAnalyzer(lowercaseKeyword, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	usernameFieldMapping := bleve.NewTextFieldMapping()
	usernameFieldMapping.Analyzer = lowercaseKeyword
	usernameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("username", usernameFieldMapping)

	emailFieldMapping := bleve.NewTextFieldMapping()
	emailFieldMapping.Analyzer = lowercaseKeyword
	emailFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("email", emailFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
