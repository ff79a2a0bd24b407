package searcher

import (
	"bytes"
	"fmt"

	"github.com/lintang-b-s/drive-search/pkg"

	"github.com/blevesearch/vellum"
)

// Vocabulary is term -> total occurrences across the whole index, kept in a finite state
// transducer.
type Vocabulary struct {
	fst   *vellum.FST // nil when empty
	total int
	size  int
}

// NewVocabulary builds the transducer from per-term counts. Terms with a count below 1 are skipped.
func NewVocabulary(counts map[string]int) (*Vocabulary, error) {
	v := &Vocabulary{}

	terms := make([]string, 0, len(counts))
	for _, term := range pkg.SortedKeys(counts) {
		if counts[term] >= 1 {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return v, nil
	}

	var buf bytes.Buffer
	fstBuilder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}

	// vellum needs keys in lexicographic byte order
	for _, term := range terms {
		count := counts[term]
		if err := fstBuilder.Insert([]byte(term), uint64(count)); err != nil {
			return nil, fmt.Errorf("error when inserting %q into vocabulary: %w", term, err)
		}
		v.total += count
		v.size++
	}

	if err := fstBuilder.Close(); err != nil {
		return nil, err
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, err
	}
	v.fst = fst
	return v, nil
}

func (v *Vocabulary) Count(word string) int {
	if v.fst == nil {
		return 0
	}
	count, ok, err := v.fst.Get([]byte(word))
	if err != nil || !ok {
		return 0
	}
	return int(count)
}

func (v *Vocabulary) Known(word string) bool {
	return v.Count(word) > 0
}

// Probability is count(word) / total count, 0 for unknown words.
func (v *Vocabulary) Probability(word string) float64 {
	if v.total == 0 {
		return 0
	}
	return float64(v.Count(word)) / float64(v.total)
}

func (v *Vocabulary) Total() int {
	return v.total
}

func (v *Vocabulary) Len() int {
	return v.size
}
