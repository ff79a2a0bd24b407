package searcher_di

import (
	"github.com/lintang-b-s/drive-search/pkg/di/config"
	"github.com/lintang-b-s/drive-search/pkg/http/usecases"
	"github.com/lintang-b-s/drive-search/pkg/index"
	"github.com/lintang-b-s/drive-search/pkg/metrics"
	"github.com/lintang-b-s/drive-search/pkg/searcher"
	"github.com/lintang-b-s/drive-search/pkg/tokenizer"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func NewTokenizer(_ *config.Config) (*tokenizer.Tokenizer, error) {
	viper.SetDefault("TOKENIZER_STEM", false)
	viper.SetDefault("TOKENIZER_LANGUAGES", tokenizer.DefaultLanguages)

	return tokenizer.New(tokenizer.Config{
		Languages:      config.StringSlice("TOKENIZER_LANGUAGES"),
		ExtraStopwords: config.StringSlice("TOKENIZER_EXTRA_STOPWORDS"),
		StopwordFiles:  config.StringSlice("TOKENIZER_STOPWORD_FILES"),
		Stem:           viper.GetBool("TOKENIZER_STEM"),
	})
}

// NewStore opens the per identifier index directories below INDEX_DIR.
func NewStore(_ *config.Config, log *zap.Logger) *index.Store {
	viper.SetDefault("INDEX_DIR", "indexes")
	return index.NewStore(viper.GetString("INDEX_DIR"), log)
}

func New(store *index.Store, tk *tokenizer.Tokenizer, log *zap.Logger, m *metrics.Metrics) usecases.Searcher {
	viper.SetDefault("SPELL_ALPHABET", searcher.DefaultAlphabet)
	return searcher.NewSearcher(store, tk, searcher.Alphabet(viper.GetString("SPELL_ALPHABET")), log, m)
}
