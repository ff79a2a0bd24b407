package controllers

import (
	"errors"
	"net/http"

	"github.com/lintang-b-s/drive-search/pkg"
	helper "github.com/lintang-b-s/drive-search/pkg/http/http-router/router-helper"
	"github.com/lintang-b-s/drive-search/pkg/searcher"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type searchAPI struct {
	baseAPI
	sessionHelper
	searchService SearchService
	loadService   LoadService
}

func New(searchService SearchService, loadService LoadService, authService AuthService, secureCookie bool,
	log *zap.Logger) *searchAPI {
	return &searchAPI{
		baseAPI:       baseAPI{log: log},
		sessionHelper: sessionHelper{auth: authService, secureCookie: secureCookie},
		searchService: searchService,
		loadService:   loadService,
	}
}

func (api *searchAPI) Routes(group *helper.RouteGroup) {
	group.GET("/search", api.search)
	group.GET("/correct", api.correct)
	group.GET("/index-exists", api.indexExists)
	group.GET("/load", api.load)
	group.GET("/reload", api.reload)
}

// searchRequest model info
//
//	@Description	query string of a keyword search.
type searchRequest struct {
	Query string `json:"query" validate:"max=1000"` // keywords, every one of them must occur in a result
}

// searchResponse model info
//
//	@Description	response body for keyword search. docs is null when no index has been built.
type searchResponse struct {
	Search bool              `json:"search"`
	Query  string            `json:"query"`
	Docs   []searcher.Result `json:"docs"`
}

// search godoc
// @Summary		find the documents containing every query keyword that occurs in the user's index.
// @Tags			search
// @ID search
// @Param			query	query	string	false	"keywords"
// @Produce		application/json
// @Router			/api/search [get]
// @Success		200	{object}	searchResponse
// @Failure		400	{object}	errorResponse
// @Failure		401	{object}	errorResponse
// @Failure		500	{object}	errorResponse
func (api *searchAPI) search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values := r.URL.Query()
	if !values.Has("query") {
		if err := api.writeJSON(w, http.StatusOK, envelope{"search": false}, nil); err != nil {
			api.ServerErrorResponse(w, r, err)
		}
		return
	}

	request := searchRequest{Query: values.Get("query")}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if !sess.Authorized() {
		api.UnauthorizedResponse(w, r, errNotAuthorized)
		return
	}

	docs, err := api.searchService.Search(r.Context(), sess.Identifier, request.Query)
	if err != nil && !errors.Is(err, pkg.ErrIndexAbsent) {
		api.ErrorResponse(w, r, err)
		return
	}

	resp := searchResponse{Search: true, Query: request.Query, Docs: docs}
	if err := api.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

type correctRequest struct {
	Query string `json:"query" validate:"required,max=1000"`
}

// correctResponse model info
//
//	@Description	spelling corrected query. corrected is null when no index has been built.
type correctResponse struct {
	Query     string  `json:"query"`
	Corrected *string `json:"corrected"`
}

// correct godoc
// @Summary		replace every query word by its most probable spelling in the user's vocabulary.
// @Tags			search
// @ID correct
// @Param			query	query	string	true	"query to correct"
// @Produce		application/json
// @Router			/api/correct [get]
// @Success		200	{object}	correctResponse
// @Failure		400	{object}	errorResponse
// @Failure		401	{object}	errorResponse
// @Failure		500	{object}	errorResponse
func (api *searchAPI) correct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	request := correctRequest{Query: r.URL.Query().Get("query")}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if !sess.Authorized() {
		api.UnauthorizedResponse(w, r, errNotAuthorized)
		return
	}

	resp := correctResponse{Query: request.Query}
	corrected, err := api.searchService.Correct(r.Context(), sess.Identifier, request.Query)
	switch {
	case err == nil:
		resp.Corrected = &corrected
	case !errors.Is(err, pkg.ErrIndexAbsent):
		api.ErrorResponse(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *searchAPI) indexExists(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	exists := sess.Authorized() && api.searchService.IndexExists(sess.Identifier)
	if err := api.writeJSON(w, http.StatusOK, envelope{"exists": exists}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// load godoc
// @Summary		build the user's index from their drive documents unless it already exists.
// @Tags			index
// @ID load
// @Produce		application/json
// @Router			/api/load [get]
// @Success		200
// @Failure		302
// @Failure		500	{object}	errorResponse
func (api *searchAPI) load(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.loadIndex(w, r, false)
}

// reload godoc
// @Summary		rebuild the user's index from their drive documents.
// @Tags			index
// @ID reload
// @Produce		application/json
// @Router			/api/reload [get]
// @Success		200
// @Failure		302
// @Failure		500	{object}	errorResponse
func (api *searchAPI) reload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.loadIndex(w, r, true)
}

func (api *searchAPI) loadIndex(w http.ResponseWriter, r *http.Request, force bool) {
	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if !sess.Authorized() {
		http.Redirect(w, r, "/authorize", http.StatusFound)
		return
	}

	res, err := api.loadService.Load(r.Context(), sess, force)
	if err != nil {
		api.ErrorResponse(w, r, err)
		return
	}

	resp := envelope{"loaded": res.Loaded}
	if res.Built {
		resp["documents"] = res.Documents
		resp["skipped"] = res.Skipped
		resp["total"] = res.Timers.Total
		resp["retrieve"] = res.Timers.Retrieve
		resp["download"] = res.Timers.Download
		resp["build_index"] = res.Timers.BuildIndex
	}
	if err := api.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
