package http_router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	_ "github.com/lintang-b-s/drive-search/docs"
	"github.com/lintang-b-s/drive-search/pkg/http/http-router/controllers"
	router_helper "github.com/lintang-b-s/drive-search/pkg/http/http-router/router-helper"
	http_server "github.com/lintang-b-s/drive-search/pkg/http/server"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Metrics interface {
	RequestMetrics
	Handler() http.Handler
}

type Services struct {
	Search       controllers.SearchService
	Load         controllers.LoadService
	Auth         controllers.AuthService
	Metrics      Metrics
	SecureCookie bool
}

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Handler builds the router with every route and the middleware chain in front of it.
func (api *API) Handler(log *zap.Logger, services Services) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore

	})

	root := router_helper.NewRouteGroup(router, "")
	group := root.Group("/api")

	searcherRoutes := controllers.New(services.Search, services.Load, services.Auth, services.SecureCookie, log)
	searcherRoutes.Routes(group)

	authRoutes := controllers.NewAuth(services.Auth, services.Search, services.SecureCookie, log)
	authRoutes.Routes(root)

	controllers.NewSiteMap(root, log).Routes(root)
	root.Handler(http.MethodGet, "/swagger/*any", httpSwagger.WrapHandler)

	chain := alice.New(corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Labels, Logger(log))
	if services.Metrics != nil {
		root.Handler(http.MethodGet, "/metrics", services.Metrics.Handler())
		chain = chain.Append(Instrument(services.Metrics, router))
	}

	return chain.Then(router)
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	log *zap.Logger,
	services Services,
) error {
	log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(log, services), config)
	log.Info(fmt.Sprintf("API run on port %d", config.Port))

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
