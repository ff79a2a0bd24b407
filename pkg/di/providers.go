package di

import (
	"context"

	searchHttp "github.com/lintang-b-s/drive-search/pkg/http"
	http_router "github.com/lintang-b-s/drive-search/pkg/http/http-router"
	"github.com/lintang-b-s/drive-search/pkg/http/http-router/controllers"
	"github.com/lintang-b-s/drive-search/pkg/http/usecases"
	"github.com/lintang-b-s/drive-search/pkg/index"
	"github.com/lintang-b-s/drive-search/pkg/kvdb"
	"github.com/lintang-b-s/drive-search/pkg/loader"
	"github.com/lintang-b-s/drive-search/pkg/metrics"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func NewSearcherService(log *zap.Logger, searcher usecases.Searcher) controllers.SearchService {
	return usecases.New(log, searcher)
}

func NewLoaderService(log *zap.Logger, l *loader.Loader, connect usecases.DriveConnector) controllers.LoadService {
	return usecases.NewLoaderService(log, l, connect)
}

func NewAuthService(log *zap.Logger, oauth *oauth2.Config, sessions *kvdb.KVDB,
	connect usecases.DriveConnector) controllers.AuthService {
	return usecases.NewAuthService(log, oauth, sessions, connect, nil)
}

func NewServices(search controllers.SearchService, load controllers.LoadService, auth controllers.AuthService,
	m *metrics.Metrics) http_router.Services {
	viper.SetDefault("SESSION_COOKIE_SECURE", false)
	return http_router.Services{
		Search:       search,
		Load:         load,
		Auth:         auth,
		Metrics:      m,
		SecureCookie: viper.GetBool("SESSION_COOKIE_SECURE"),
	}
}

func NewSearchAPIServer(ctx context.Context, log *zap.Logger,
	services http_router.Services) (*searchHttp.Server, error) {
	api := searchHttp.NewServer(log)

	apiService, err := api.Use(
		ctx, log, services,
	)
	if err != nil {
		return nil, err
	}

	return apiService, nil
}

// Indexer builds indexes from local directories, outside of any http session.
type Indexer struct {
	Ctx    context.Context
	Log    *zap.Logger
	Loader *loader.Loader
	Store  *index.Store
}

func NewIndexer(ctx context.Context, log *zap.Logger, l *loader.Loader, store *index.Store) *Indexer {
	return &Indexer{Ctx: ctx, Log: log, Loader: l, Store: store}
}
