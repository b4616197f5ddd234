package api

import (
	"net/http"
	"strconv"

	"library-service/library"
)

func (s *Server) messagesByUser(w http.ResponseWriter, r *http.Request) *appError {
	email, e := stringParam(r, "userEmail")
	if e != nil {
		return e
	}
	page, e := pageParams(r)
	if e != nil {
		return e
	}
	msgs, err := s.messages.MessagesByUser(r.Context(), email, page)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, msgs)
	return nil
}

func (s *Server) messagesByClosed(w http.ResponseWriter, r *http.Request) *appError {
	raw, e := stringParam(r, "closed")
	if e != nil {
		return e
	}
	closed, err := strconv.ParseBool(raw)
	if err != nil {
		return badRequest("closed must be true or false")
	}
	page, e := pageParams(r)
	if e != nil {
		return e
	}
	msgs, err := s.messages.MessagesByClosed(r.Context(), closed, page)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, msgs)
	return nil
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) *appError {
	var req library.MessageRequest
	if e := decodeJSON(r, &req); e != nil {
		return e
	}
	msg, err := s.messages.PostMessage(r.Context(), req, userEmail(r))
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusCreated, msg)
	return nil
}

func (s *Server) answerMessage(w http.ResponseWriter, r *http.Request) *appError {
	var req library.AdminQuestionRequest
	if e := decodeJSON(r, &req); e != nil {
		return e
	}
	msg, err := s.messages.PutMessage(r.Context(), req, userEmail(r))
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, msg)
	return nil
}
