package loader_di

import (
	"github.com/lintang-b-s/drive-search/pkg/di/config"
	"github.com/lintang-b-s/drive-search/pkg/extract"
	"github.com/lintang-b-s/drive-search/pkg/index"
	"github.com/lintang-b-s/drive-search/pkg/loader"
	"github.com/lintang-b-s/drive-search/pkg/metrics"
	"github.com/lintang-b-s/drive-search/pkg/tokenizer"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func New(_ *config.Config, store *index.Store, tk *tokenizer.Tokenizer, log *zap.Logger,
	m *metrics.Metrics) *loader.Loader {
	viper.SetDefault("DOWNLOAD_DIR", "downloads")
	viper.SetDefault("LOADER_WORKERS", 4)
	viper.SetDefault("LOADER_DISCARD_DOWNLOADS", true)
	viper.SetDefault("LOADER_ALLOWED_EXTENSIONS", loader.DefaultAllowedExtensions)

	cfg := loader.Config{
		DownloadDir:       viper.GetString("DOWNLOAD_DIR"),
		Workers:           viper.GetInt("LOADER_WORKERS"),
		DiscardDownloads:  viper.GetBool("LOADER_DISCARD_DOWNLOADS"),
		AllowedExtensions: config.StringSlice("LOADER_ALLOWED_EXTENSIONS"),
	}
	return loader.New(index.NewBuilder(tk, log), store, extract.New(), cfg, log, m)
}
