package api

import (
	"context"
	"net/http"

	"library-service/library"
)

func (s *Server) addBook(w http.ResponseWriter, r *http.Request) *appError {
	var req library.AddBookRequest
	if e := decodeJSON(r, &req); e != nil {
		return e
	}
	book, err := s.admin.PostBook(r.Context(), req)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusCreated, book)
	return nil
}

func (s *Server) increaseQuantity(w http.ResponseWriter, r *http.Request) *appError {
	return s.adminBookOp(w, r, s.admin.IncreaseBookQuantity)
}

func (s *Server) decreaseQuantity(w http.ResponseWriter, r *http.Request) *appError {
	return s.adminBookOp(w, r, s.admin.DecreaseBookQuantity)
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) *appError {
	return s.adminBookOp(w, r, s.admin.DeleteBook)
}

func (s *Server) adminBookOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) error) *appError {
	id, e := int64Param(r, "bookId")
	if e != nil {
		return e
	}
	if err := op(r.Context(), id); err != nil {
		return fromError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
