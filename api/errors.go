package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"library-service/library"
)

// appHandler is an http.Handler that reports failures as *appError.
type appHandler func(http.ResponseWriter, *http.Request) *appError

type appError struct {
	Error   error
	Message string
	Code    int
}

func (fn appHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e := fn(w, r)
	if e == nil {
		return
	}
	entry := logFrom(r).WithFields(logrus.Fields{"status": e.Code, "path": r.URL.Path})
	if e.Error != nil {
		entry = entry.WithError(e.Error)
	}
	if e.Code >= http.StatusInternalServerError {
		entry.Error(e.Message)
	} else {
		entry.Debug(e.Message)
	}
	writeJSON(w, e.Code, map[string]string{"error": e.Message})
}

func appErrorf(code int, err error, msg string) *appError {
	return &appError{Error: err, Message: msg, Code: code}
}

// fromError maps a service error onto its HTTP status. Messages of
// classified errors reach the client; anything else becomes a bare 500.
func fromError(err error) *appError {
	code := http.StatusInternalServerError
	switch library.KindOf(err) {
	case library.KindNotFound:
		code = http.StatusNotFound
	case library.KindAlreadyExists, library.KindNotAvailable:
		code = http.StatusConflict
	case library.KindInvalid, library.KindMissingPaymentInfo:
		code = http.StatusBadRequest
	case library.KindUnauthorized:
		code = http.StatusUnauthorized
	case library.KindUpstream:
		code = http.StatusBadGateway
	default:
		return appErrorf(code, err, "internal server error")
	}
	return appErrorf(code, err, err.Error())
}

func badRequest(msg string) *appError {
	return appErrorf(http.StatusBadRequest, nil, msg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
