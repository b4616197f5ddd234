package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"library-service/library"
)

// int64Param reads a required integer query parameter.
func int64Param(r *http.Request, name string) (int64, *appError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, badRequest(name + " is required")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest(name + " must be an integer")
	}
	return n, nil
}

func stringParam(r *http.Request, name string) (string, *appError) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", badRequest(name + " is required")
	}
	return v, nil
}

func pathID(r *http.Request) (int64, *appError) {
	n, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, badRequest("invalid id")
	}
	return n, nil
}

// pageParams reads the zero-based page and size query parameters.
func pageParams(r *http.Request) (library.PageRequest, *appError) {
	var p library.PageRequest
	q := r.URL.Query()
	for name, dst := range map[string]*int{"page": &p.Page, "size": &p.Size} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, badRequest(name + " must be a non-negative integer")
		}
		if name == "page" && n > library.MaxPage {
			return p, badRequest("page must be at most " + strconv.Itoa(library.MaxPage))
		}
		*dst = n
	}
	return p, nil
}

func decodeJSON(r *http.Request, v any) *appError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrorf(http.StatusBadRequest, err, "malformed request body")
	}
	return nil
}
