package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/lintang-b-s/drive-search/pkg"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"go.uber.org/zap"
)

type envelope map[string]any

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type baseAPI struct {
	log *zap.Logger
}

// writeJSON marshals data structure to encoded JSON response.
func (api *baseAPI) writeJSON(w http.ResponseWriter, status int, data any,
	headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	js = append(js, '\n')
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		api.log.Error("failed to write JSON response", zap.Error(err))
		return err
	}

	return nil
}

func (api *baseAPI) errorJSON(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := errorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	if err := api.writeJSON(w, status, resp, nil); err != nil {
		api.log.Error("failed to write error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *baseAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorJSON(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func (api *baseAPI) UnauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorJSON(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
}

func (api *baseAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path),
		zap.Error(err))
	api.errorJSON(w, r, http.StatusInternalServerError, "internal_server_error", pkg.MessageInternalServerError)
}

// ErrorResponse picks the response for err from its error code.
func (api *baseAPI) ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pkg.ErrBadParamInput):
		api.BadRequestResponse(w, r, err)
	case errors.Is(err, pkg.ErrUnauthorized):
		api.UnauthorizedResponse(w, r, err)
	case errors.Is(err, pkg.ErrNotFound):
		api.errorJSON(w, r, http.StatusNotFound, "not_found", err.Error())
	default:
		api.ServerErrorResponse(w, r, err)
	}
}

var (
	validate   *validator.Validate
	translator ut.Translator
	initOnce   sync.Once
)

// validateRequest checks the validate tags of request and returns the english messages of every
// failed field.
func validateRequest(request any) error {
	initOnce.Do(func() {
		validate = validator.New()
		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, translator)
	})

	err := validate.Struct(request)
	if err == nil {
		return nil
	}
	vv := translateError(err, translator)
	vvString := []string{}
	for _, v := range vv {
		vvString = append(vvString, v.Error())
	}
	return pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "validation error: %s", strings.Join(vvString, "; "))
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf("%s", e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
