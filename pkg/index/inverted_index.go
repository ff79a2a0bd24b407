package index

import (
	"fmt"
	"sort"

	"github.com/lintang-b-s/drive-search/pkg"
)

// Postings maps term -> document name -> number of occurrences. Counts are always >= 1.
type Postings map[string]map[string]int

// DocLink is where a document lives in the user's drive.
type DocLink struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// DocLinks maps document name -> drive id and link.
type DocLinks map[string]DocLink

// InvertedIndex is one user's index: postings plus the document id table (docID -> name, ordered by name).
type InvertedIndex struct {
	Postings Postings
	DocIDs   []string
}

func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		Postings: make(Postings),
		DocIDs:   []string{},
	}
}

// Contains reports whether term has at least one posting.
func (idx *InvertedIndex) Contains(term string) bool {
	_, ok := idx.Postings[term]
	return ok
}

// GetPostingList returns the names of the documents containing term, sorted.
func (idx *InvertedIndex) GetPostingList(term string) []string {
	docs, ok := idx.Postings[term]
	if !ok {
		return []string{}
	}
	return pkg.SortedKeys(docs)
}

// Terms returns the vocabulary sorted.
func (idx *InvertedIndex) Terms() []string {
	return pkg.SortedKeys(idx.Postings)
}

// TermCounts sums the per-document frequencies of every term.
func (idx *InvertedIndex) TermCounts() map[string]int {
	counts := make(map[string]int, len(idx.Postings))
	for term, docs := range idx.Postings {
		for _, freq := range docs {
			counts[term] += freq
		}
	}
	return counts
}

// Documents returns every document name referenced by a posting, sorted.
func (idx *InvertedIndex) Documents() []string {
	seen := make(map[string]struct{})
	for _, docs := range idx.Postings {
		for doc := range docs {
			seen[doc] = struct{}{}
		}
	}
	return pkg.SortedKeys(seen)
}

// DocIDMap returns the docID -> name table in the shape persisted to docs.json.
func (idx *InvertedIndex) DocIDMap() map[int]string {
	m := make(map[int]string, len(idx.DocIDs))
	for id, name := range idx.DocIDs {
		m[id] = name
	}
	return m
}

// CheckLinks returns ErrConsistencyViolation if a document in the postings has no link.
func (idx *InvertedIndex) CheckLinks(links DocLinks) error {
	for _, doc := range idx.Documents() {
		if _, ok := links[doc]; !ok {
			return pkg.WrapErrorf(nil, pkg.ErrConsistencyViolation, "document %q has postings but no link", doc)
		}
	}
	return nil
}

func docIDsFromMap(m map[int]string) ([]string, error) {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	docIDs := make([]string, len(ids))
	for i, id := range ids {
		if id != i {
			return nil, fmt.Errorf("doc id table is not contiguous at %d", i)
		}
		docIDs[i] = m[id]
	}
	return docIDs, nil
}
