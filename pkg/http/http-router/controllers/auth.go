package controllers

import (
	"errors"
	"net/http"

	"github.com/lintang-b-s/drive-search/pkg"
	helper "github.com/lintang-b-s/drive-search/pkg/http/http-router/router-helper"
	"github.com/lintang-b-s/drive-search/pkg/kvdb"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

var errNotAuthorized = pkg.WrapErrorf(nil, pkg.ErrUnauthorized, "google drive access has not been granted, visit /authorize")

type authAPI struct {
	baseAPI
	sessionHelper
	searchService SearchService
}

func NewAuth(authService AuthService, searchService SearchService, secureCookie bool, log *zap.Logger) *authAPI {
	return &authAPI{
		baseAPI:       baseAPI{log: log},
		sessionHelper: sessionHelper{auth: authService, secureCookie: secureCookie},
		searchService: searchService,
	}
}

func (api *authAPI) Routes(group *helper.RouteGroup) {
	group.GET("/", api.home)
	group.GET("/authorize", api.authorize)
	group.GET("/oauth2callback", api.oauth2Callback)
	group.GET("/revoke", api.revoke)
	group.GET("/clear", api.clear)
	group.GET("/logout", api.logout)
}

func (api *authAPI) home(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	authorized := sess.Authorized()
	resp := envelope{
		"authorized":   authorized,
		"index_exists": authorized && api.searchService.IndexExists(sess.Identifier),
	}
	if err := api.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// authorize redirects to the google consent page. The state sent along is kept in the session and
// checked by oauth2Callback.
func (api *authAPI) authorize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	authURL, err := api.auth.AuthCodeURL(sess)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

type callbackRequest struct {
	State string `json:"state" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

func (api *authAPI) oauth2Callback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values := r.URL.Query()
	if reason := values.Get("error"); reason != "" {
		api.UnauthorizedResponse(w, r, pkg.WrapErrorf(nil, pkg.ErrUnauthorized, "authorization denied: %s", reason))
		return
	}

	request := callbackRequest{State: values.Get("state"), Code: values.Get("code")}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if err := api.auth.Exchange(r.Context(), sess, request.State, request.Code); err != nil {
		api.ErrorResponse(w, r, err)
		return
	}
	api.log.Info("drive access granted", zap.String("identifier", sess.Identifier))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (api *authAPI) revoke(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if !sess.Authorized() {
		http.Redirect(w, r, "/authorize", http.StatusFound)
		return
	}

	api.revokeToken(r, sess)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (api *authAPI) clear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if err := api.auth.Clear(sess); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (api *authAPI) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess, err := api.session(w, r)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if sess.Authorized() {
		api.revokeToken(r, sess)
	}
	if err := api.auth.Clear(sess); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// revokeToken only logs failures; the user is signed out locally either way.
func (api *authAPI) revokeToken(r *http.Request, sess *kvdb.Session) {
	err := api.auth.Revoke(r.Context(), sess)
	switch {
	case err == nil:
	case errors.Is(err, pkg.ErrUnauthorized):
		api.log.Warn("token already invalid", zap.String("identifier", sess.Identifier), zap.Error(err))
	default:
		api.log.Error("revoke failed", zap.String("identifier", sess.Identifier), zap.Error(err))
	}
}
