package searcher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lintang-b-s/drive-search/pkg"
	"github.com/lintang-b-s/drive-search/pkg/index"
	"github.com/lintang-b-s/drive-search/pkg/tokenizer"

	"go.uber.org/zap"
)

type IndexStore interface {
	Exists(id string) bool
	Load(id string) (*index.InvertedIndex, index.DocLinks, error)
}

type Metrics interface {
	ObserveQuery(kind string, d time.Duration, results int, err error)
}

// Result is a matching document. It is encoded as [name, {"id": ..., "link": ...}].
type Result struct {
	Name string
	index.DocLink
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Name, r.DocLink})
}

func (r *Result) UnmarshalJSON(buf []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(buf, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "result must be a [name, link] pair")
	}
	if err := json.Unmarshal(pair[0], &r.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &r.DocLink)
}

// Searcher answers keyword and spelling queries against the index of one identifier at a time.
type Searcher struct {
	store     IndexStore
	tokenizer *tokenizer.Tokenizer
	alphabet  []rune
	log       *zap.Logger
	metrics   Metrics
}

func NewSearcher(store IndexStore, tk *tokenizer.Tokenizer, alphabet []rune, log *zap.Logger,
	metrics Metrics) *Searcher {
	if tk == nil {
		tk = tokenizer.Default()
	}
	if len(alphabet) == 0 {
		alphabet = Alphabet(DefaultAlphabet)
	}
	return &Searcher{store: store, tokenizer: tk, alphabet: alphabet, log: log, metrics: metrics}
}

func (se *Searcher) IndexExists(id string) bool {
	return se.store.Exists(id)
}

func (se *Searcher) load(id string) (*index.InvertedIndex, index.DocLinks, error) {
	if !se.store.Exists(id) {
		return nil, nil, pkg.WrapErrorf(nil, pkg.ErrIndexAbsent, "no index for %s", id)
	}
	return se.store.Load(id)
}

// Find returns the documents containing every query term that occurs in the index, sorted by name.
// Query terms missing from the index are ignored; when none of them occur the result is empty.
// ErrIndexAbsent is returned when id has no index.
func (se *Searcher) Find(ctx context.Context, id, query string) (results []Result, err error) {
	start := time.Now()
	defer func() {
		if se.metrics != nil {
			se.metrics.ObserveQuery("search", time.Since(start), len(results), err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx, links, err := se.load(id)
	if err != nil {
		return nil, err
	}

	queryTerms := make(map[string]struct{})
	postingLists := [][]string{}
	for _, term := range se.tokenizer.Tokenize(query) {
		if _, ok := queryTerms[term]; ok {
			continue
		}
		queryTerms[term] = struct{}{}
		if !idx.Contains(term) {
			continue
		}
		postingLists = append(postingLists, idx.GetPostingList(term))
	}

	docs := IntersectAll(postingLists)

	results = make([]Result, 0, len(docs))
	for _, doc := range docs {
		link, ok := links[doc]
		if !ok {
			se.log.Error("document has postings but no link",
				zap.String("identifier", id), zap.String("document", doc))
			return nil, pkg.WrapErrorf(nil, pkg.ErrConsistencyViolation, "no link for document %q", doc)
		}
		results = append(results, Result{Name: doc, DocLink: link})
	}

	se.log.Debug("search", zap.String("identifier", id), zap.String("query", query),
		zap.Int("terms", len(postingLists)), zap.Int("results", len(results)))
	return results, nil
}

// NewSpellCorrector builds a corrector over the current index of id.
func (se *Searcher) NewSpellCorrector(id string) (*SpellCorrector, error) {
	idx, _, err := se.load(id)
	if err != nil {
		return nil, err
	}
	vocab, err := NewVocabulary(idx.TermCounts())
	if err != nil {
		return nil, err
	}
	return NewSpellCorrector(vocab, se.alphabet, se.tokenizer), nil
}

// Correct spell-corrects query against the index of id.
func (se *Searcher) Correct(ctx context.Context, id, query string) (corrected string, err error) {
	start := time.Now()
	defer func() {
		if se.metrics != nil {
			se.metrics.ObserveQuery("correct", time.Since(start), 1, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	sc, err := se.NewSpellCorrector(id)
	if err != nil {
		return "", err
	}
	corrected = sc.Correct(query)
	se.log.Debug("spell correction", zap.String("identifier", id), zap.String("query", query),
		zap.String("corrected", corrected))
	return corrected, nil
}
