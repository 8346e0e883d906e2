// Package search ranks navigation entries against a free-text query with
// BM25 over titles, links and breadcrumbs, falling back to edit distance on
// titles when nothing matches a term exactly.
package search

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/morozRed/doxnav/internal/navtree"
)

const defaultLimit = 10

var tokenPattern = regexp.MustCompile(`[a-z0-9_]+`)

type Document struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Link       string         `json:"link,omitempty"`
	Breadcrumb []string       `json:"breadcrumb,omitempty"`
	Length     int            `json:"-"`
	Terms      map[string]int `json:"-"`
}

type Index struct {
	DocumentCount int
	AvgDocLength  float64
	DocFreq       map[string]int
	Documents     []Document
	byID          map[string]int
}

type Result struct {
	Document
	Score float64 `json:"score"`
}

// Build indexes the loaded nodes of tree. Deferred children are not
// fetched; expand the tree first to search everything.
func Build(tree *navtree.Tree) *Index {
	index := &Index{DocFreq: map[string]int{}, byID: map[string]int{}}
	if tree == nil {
		return index
	}

	totalLength := 0
	for n := range tree.Traverse() {
		path := navtree.PathTo(n)
		crumbs := make([]string, 0, len(path)-1)
		for _, ancestor := range path[:len(path)-1] {
			crumbs = append(crumbs, ancestor.Title)
		}

		terms := buildTerms(n.Title, n.Link, crumbs)
		length := 0
		for _, count := range terms {
			length += count
		}
		if length == 0 {
			continue
		}

		index.Documents = append(index.Documents, Document{
			ID:         navtree.FormatPath(navtree.IndexPath(n)),
			Title:      n.Title,
			Link:       n.Link,
			Breadcrumb: crumbs,
			Length:     length,
			Terms:      terms,
		})
		totalLength += length
		for term := range terms {
			index.DocFreq[term]++
		}
	}

	index.DocumentCount = len(index.Documents)
	if index.DocumentCount > 0 {
		index.AvgDocLength = float64(totalLength) / float64(index.DocumentCount)
	}
	for i, doc := range index.Documents {
		index.byID[doc.ID] = i
	}
	return index
}

// Lookup returns the document for a node id such as "2/0/3".
func (index *Index) Lookup(id string) (Document, bool) {
	i, ok := index.byID[id]
	if !ok {
		return Document{}, false
	}
	return index.Documents[i], true
}

// Search returns up to limit results, best first. Equal scores keep
// pre-order.
func Search(index *Index, query string, limit int) []Result {
	if index == nil || len(index.Documents) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	seenTerms := make(map[string]bool, len(queryTerms))
	uniqueTerms := make([]string, 0, len(queryTerms))
	for _, term := range queryTerms {
		if seenTerms[term] {
			continue
		}
		seenTerms[term] = true
		uniqueTerms = append(uniqueTerms, term)
	}

	k1 := 1.2
	b := 0.75
	n := float64(index.DocumentCount)
	avgLen := index.AvgDocLength
	if avgLen <= 0 {
		avgLen = 1
	}

	results := make([]Result, 0)
	order := make(map[string]int, len(index.Documents))
	for i, doc := range index.Documents {
		order[doc.ID] = i
		score := 0.0
		docLen := float64(doc.Length)
		for _, term := range uniqueTerms {
			tf := float64(doc.Terms[term])
			if tf <= 0 {
				continue
			}
			df := float64(index.DocFreq[term])
			if df <= 0 {
				continue
			}
			idf := math.Log(1.0 + ((n - df + 0.5) / (df + 0.5)))
			numerator := tf * (k1 + 1.0)
			denominator := tf + k1*(1.0-b+b*(docLen/avgLen))
			score += idf * (numerator / denominator)
		}
		if score > 0 {
			results = append(results, Result{Document: doc, Score: score})
		}
	}

	if len(results) == 0 {
		results = fuzzyTitleFallback(index.Documents, query)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return order[results[i].ID] < order[results[j].ID]
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func buildTerms(title, link string, breadcrumb []string) map[string]int {
	terms := make(map[string]int)
	addWeighted(terms, title, 4)
	addWeighted(terms, strings.TrimSuffix(link, ".html"), 2)
	for _, crumb := range breadcrumb {
		addWeighted(terms, crumb, 1)
	}
	return terms
}

func addWeighted(terms map[string]int, value string, weight int) {
	for _, token := range tokenize(value) {
		terms[token] += weight
	}
}

func tokenize(value string) []string {
	value = strings.ToLower(value)
	if value == "" {
		return nil
	}
	return tokenPattern.FindAllString(value, -1)
}

func fuzzyTitleFallback(documents []Document, query string) []Result {
	needle := normalizeForFuzzy(query)
	if needle == "" {
		return nil
	}

	results := make([]Result, 0)
	for _, doc := range documents {
		candidate := normalizeForFuzzy(doc.Title)
		if candidate == "" {
			continue
		}
		distance := levenshteinDistance(needle, candidate)
		threshold := max(len(candidate)/3, 2)
		if distance > threshold {
			continue
		}
		results = append(results, Result{Document: doc, Score: 1.0 / float64(1+distance)})
	}
	return results
}

func normalizeForFuzzy(value string) string {
	return strings.Join(tokenize(value), "")
}

func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			current[j] = min(current[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = current
	}
	return prev[len(b)]
}
