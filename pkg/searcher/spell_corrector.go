package searcher

import (
	"strings"
	"sync"

	"github.com/lintang-b-s/drive-search/pkg/tokenizer"
)

// SpellCorrector picks, for every query word, the most probable vocabulary word within two edits
// (https://norvig.com/spell-correct.html). Edits are deletion, adjacent transposition, substitution
// and insertion over a fixed alphabet.
type SpellCorrector struct {
	vocab     *Vocabulary
	alphabet  []rune
	tokenizer *tokenizer.Tokenizer

	mu          sync.Mutex
	corrections map[string]string
}

func NewSpellCorrector(vocab *Vocabulary, alphabet []rune, tk *tokenizer.Tokenizer) *SpellCorrector {
	if len(alphabet) == 0 {
		alphabet = Alphabet(DefaultAlphabet)
	}
	if tk == nil {
		tk = tokenizer.Default()
	}
	return &SpellCorrector{
		vocab:       vocab,
		alphabet:    alphabet,
		tokenizer:   tk,
		corrections: make(map[string]string),
	}
}

// Correct returns the query words joined by single spaces, each term replaced by its correction.
// Stopwords and words that are not purely alphabetic are kept as they are, and so are words whose
// index form is in the vocabulary. Other words are corrected in their index form.
func (sc *SpellCorrector) Correct(query string) string {
	words := sc.tokenizer.Words(query)
	for i, word := range words {
		if !sc.tokenizer.IsTerm(word) {
			continue
		}
		term := sc.tokenizer.Normalize(word)
		if sc.vocab.Known(term) {
			continue
		}
		words[i] = sc.Correction(term)
	}
	return strings.Join(words, " ")
}

// Correction is the most probable spelling of word. Ties go to the lexicographically smallest
// candidate.
func (sc *SpellCorrector) Correction(word string) string {
	sc.mu.Lock()
	if c, ok := sc.corrections[word]; ok {
		sc.mu.Unlock()
		return c
	}
	sc.mu.Unlock()

	best := word
	bestProb := -1.0
	for _, candidate := range sc.Candidates(word) {
		p := sc.vocab.Probability(candidate)
		if p > bestProb || (p == bestProb && candidate < best) {
			best, bestProb = candidate, p
		}
	}

	sc.mu.Lock()
	sc.corrections[word] = best
	sc.mu.Unlock()
	return best
}

// Candidates returns the first non-empty tier of: the word itself if known, known words one edit
// away, known words two edits away, the word itself.
func (sc *SpellCorrector) Candidates(word string) []string {
	if sc.vocab.Known(word) {
		return []string{word}
	}

	known := make(map[string]struct{})
	sc.edits1(word, func(e1 string) {
		if sc.vocab.Known(e1) {
			known[e1] = struct{}{}
		}
	})
	if len(known) > 0 {
		return setToSlice(known)
	}

	seen := make(map[string]struct{})
	sc.edits1(word, func(e1 string) {
		if _, ok := seen[e1]; ok {
			return
		}
		seen[e1] = struct{}{}
		sc.edits1(e1, func(e2 string) {
			if sc.vocab.Known(e2) {
				known[e2] = struct{}{}
			}
		})
	})
	if len(known) > 0 {
		return setToSlice(known)
	}

	return []string{word}
}

// Edits1 returns every distinct string one edit away from word.
func (sc *SpellCorrector) Edits1(word string) []string {
	set := make(map[string]struct{})
	sc.edits1(word, func(e string) {
		set[e] = struct{}{}
	})
	return setToSlice(set)
}

// edits1 calls visit for every string one edit away from word. The same string may be visited more
// than once.
func (sc *SpellCorrector) edits1(word string, visit func(string)) {
	runes := []rune(word)
	n := len(runes)
	buf := make([]rune, 0, n+1)

	for i := 0; i <= n; i++ {
		left, right := runes[:i], runes[i:]

		if len(right) > 0 {
			// deletion
			buf = append(append(buf[:0], left...), right[1:]...)
			visit(string(buf))
		}

		if len(right) > 1 {
			// transposition
			buf = append(append(buf[:0], left...), right[1], right[0])
			buf = append(buf, right[2:]...)
			visit(string(buf))
		}

		for _, c := range sc.alphabet {
			if len(right) > 0 && c != right[0] {
				// substitution
				buf = append(append(buf[:0], left...), c)
				buf = append(buf, right[1:]...)
				visit(string(buf))
			}

			// insertion
			buf = append(append(buf[:0], left...), c)
			buf = append(buf, right...)
			visit(string(buf))
		}
	}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}
