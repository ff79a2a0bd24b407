// Package tokenizer turns raw document or query text into normalized terms. The same Tokenizer must
// be used at index time and at query time, otherwise terms never match.
package tokenizer

import (
	"bufio"
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/kljensen/snowball"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed stopwords/*.txt
var stopwordFS embed.FS

// DefaultLanguages are the embedded stopword lists combined by Default.
var DefaultLanguages = []string{"english", "russian"}

type Config struct {
	Languages      []string // embedded stopword lists, see DefaultLanguages
	ExtraStopwords []string
	StopwordFiles  []string // one word per line
	Stem           bool     // snowball stemming, russian for cyrillic tokens, english otherwise
}

type Tokenizer struct {
	stopwords map[string]struct{}
	stem      bool
}

// New builds a Tokenizer. The stopword set is fixed after New returns.
func New(cfg Config) (*Tokenizer, error) {
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	tk := &Tokenizer{
		stopwords: make(map[string]struct{}, 512),
		stem:      cfg.Stem,
	}

	for _, lang := range languages {
		f, err := stopwordFS.Open("stopwords/" + lang + ".txt")
		if err != nil {
			return nil, fmt.Errorf("unknown stopword language %q: %w", lang, err)
		}
		err = tk.addStopwords(bufio.NewScanner(f))
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	for _, path := range cfg.StopwordFiles {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error when opening stopword file %s: %w", path, err)
		}
		err = tk.addStopwords(bufio.NewScanner(f))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("error when reading stopword file %s: %w", path, err)
		}
	}

	for _, w := range cfg.ExtraStopwords {
		tk.addStopword(w)
	}

	return tk, nil
}

func (tk *Tokenizer) addStopwords(scanner *bufio.Scanner) error {
	for scanner.Scan() {
		tk.addStopword(scanner.Text())
	}
	return scanner.Err()
}

func (tk *Tokenizer) addStopword(w string) {
	w = strings.TrimSpace(w)
	if w == "" {
		return
	}
	tk.stopwords[lower(w)] = struct{}{}
}

var (
	defaultOnce      sync.Once
	defaultTokenizer *Tokenizer
)

// Default returns the shared tokenizer with the english and russian stopword lists.
func Default() *Tokenizer {
	defaultOnce.Do(func() {
		tk, err := New(Config{})
		if err != nil {
			// embedded lists are part of the binary
			panic(err)
		}
		defaultTokenizer = tk
	})
	return defaultTokenizer
}

// Tokenize is Default().Tokenize.
func Tokenize(text string) []string {
	return Default().Tokenize(text)
}

// Words lower-cases text and splits it on unicode word boundaries. Punctuation and whitespace
// segments are dropped, nothing else is filtered.
func (tk *Tokenizer) Words(text string) []string {
	text = lower(text)
	words := make([]string, 0, len(text)/6)

	state := -1
	var word string
	for len(text) > 0 {
		word, text, state = uniseg.FirstWordInString(text, state)
		if hasLetterOrDigit(word) {
			words = append(words, word)
		}
	}
	return words
}

// Tokenize returns the index terms of text: alphabetic, non stopword, optionally stemmed.
func (tk *Tokenizer) Tokenize(text string) []string {
	words := tk.Words(text)
	tokens := words[:0]
	for _, w := range words {
		if !tk.IsTerm(w) {
			continue
		}
		tokens = append(tokens, tk.Normalize(w))
	}
	return tokens
}

// Normalize maps a lower-cased term to its index form, the snowball stem when stemming is on.
func (tk *Tokenizer) Normalize(word string) string {
	if tk.stem {
		return stem(word)
	}
	return word
}

// IsTerm reports whether an already lower-cased word is kept by Tokenize.
func (tk *Tokenizer) IsTerm(word string) bool {
	return IsAlpha(word) && !tk.IsStopword(word)
}

func (tk *Tokenizer) IsStopword(word string) bool {
	_, ok := tk.stopwords[word]
	return ok
}

func IsAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// cases.Caser keeps state, so it is not shared between goroutines.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func stem(word string) string {
	lang := "english"
	for _, r := range word {
		if unicode.Is(unicode.Cyrillic, r) {
			lang = "russian"
			break
		}
	}
	stemmed, err := snowball.Stem(word, lang, true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
