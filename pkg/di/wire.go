//go:build wireinject

//go:generate wire
package di

import (
	"github.com/lintang-b-s/drive-search/pkg/di/config"
	shortcontext "github.com/lintang-b-s/drive-search/pkg/di/context"
	drive_di "github.com/lintang-b-s/drive-search/pkg/di/drive"
	kv_di "github.com/lintang-b-s/drive-search/pkg/di/kv"
	loader_di "github.com/lintang-b-s/drive-search/pkg/di/loader"
	logger_di "github.com/lintang-b-s/drive-search/pkg/di/logger"
	searcher_di "github.com/lintang-b-s/drive-search/pkg/di/searcher"
	searchHttp "github.com/lintang-b-s/drive-search/pkg/http"
	"github.com/lintang-b-s/drive-search/pkg/metrics"

	"github.com/google/wire"
)

var defaultSet = wire.NewSet(
	shortcontext.New,
	config.New,
	logger_di.New,
	metrics.New,
)

var indexSet = wire.NewSet(
	searcher_di.NewTokenizer,
	searcher_di.NewStore,
	loader_di.New,
)

var searcherSet = wire.NewSet(
	defaultSet,
	indexSet,
	kv_di.New,
	searcher_di.New,
	drive_di.NewOAuthConfig,
	drive_di.NewConnector,
	NewSearcherService,
	NewLoaderService,
	NewAuthService,
	NewServices,
	NewSearchAPIServer,
)

var indexerSet = wire.NewSet(
	defaultSet,
	indexSet,
	NewIndexer,
)

func InitializeSearcherService() (*searchHttp.Server, func(), error) {

	panic(wire.Build(searcherSet))
}

func InitializeIndexer() (*Indexer, func(), error) {

	panic(wire.Build(indexerSet))
}
