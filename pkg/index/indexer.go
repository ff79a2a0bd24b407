package index

import (
	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/tokenizer"

	"go.uber.org/zap"
)

type Tokenizer interface {
	Tokenize(text string) []string
}

// Builder turns extracted document texts into an InvertedIndex.
type Builder struct {
	tokenizer Tokenizer
	log       *zap.Logger
}

func NewBuilder(tk Tokenizer, log *zap.Logger) *Builder {
	if tk == nil {
		tk = tokenizer.Default()
	}
	return &Builder{tokenizer: tk, log: log}
}

// Build indexes every document. Documents are visited in name order, though the postings do not
// depend on it. A document without terms gets a doc id but no postings.
func (b *Builder) Build(docs map[string]string) *InvertedIndex {
	idx := NewInvertedIndex()
	for _, name := range pkg.SortedKeys(docs) {
		b.AddDocument(idx, name, docs[name])
	}
	b.log.Info("inverted index built",
		zap.Int("documents", len(idx.DocIDs)),
		zap.Int("terms", len(idx.Postings)))
	return idx
}

// AddDocument counts the terms of text and merges them into idx.
func (b *Builder) AddDocument(idx *InvertedIndex, name, text string) {
	termFreq := CountTerms(b.tokenizer.Tokenize(text))
	if len(termFreq) == 0 {
		b.log.Debug("document has no terms", zap.String("document", name))
	}

	for term, freq := range termFreq {
		docs, ok := idx.Postings[term]
		if !ok {
			docs = make(map[string]int)
			idx.Postings[term] = docs
		}
		docs[name] = freq
	}
	idx.DocIDs = append(idx.DocIDs, name)
}

func CountTerms(tokens []string) map[string]int {
	termFreq := make(map[string]int, len(tokens))
	for _, token := range tokens {
		termFreq[token]++
	}
	return termFreq
}
