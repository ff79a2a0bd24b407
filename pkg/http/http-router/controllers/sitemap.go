package controllers

import (
	"net/http"
	"strings"

	helper "github.com/lintang-b-s/drive-search/pkg/http/http-router/router-helper"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type siteMapAPI struct {
	baseAPI
	routes func() []helper.Route
}

// NewSiteMap lists the routes registered on group, including routes added after this call.
func NewSiteMap(group *helper.RouteGroup, log *zap.Logger) *siteMapAPI {
	return &siteMapAPI{baseAPI: baseAPI{log: log}, routes: group.Routes}
}

func (api *siteMapAPI) Routes(group *helper.RouteGroup) {
	group.GET("/site-map", api.siteMap)
}

// siteMap returns [url, name] pairs for every GET route a browser can open, i.e. without path
// parameters.
func (api *siteMapAPI) siteMap(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	links := [][2]string{}
	for _, route := range api.routes() {
		if route.Method != http.MethodGet || strings.ContainsAny(route.Path, ":*") {
			continue
		}
		links = append(links, [2]string{route.Path, routeName(route.Path)})
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"links": links}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func routeName(path string) string {
	name := strings.Trim(path, "/")
	if name == "" {
		return "index"
	}
	return strings.ReplaceAll(strings.ReplaceAll(name, "/", "_"), "-", "_")
}
