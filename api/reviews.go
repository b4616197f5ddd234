package api

import (
	"net/http"

	"library-service/library"
)

func (s *Server) reviewsByBook(w http.ResponseWriter, r *http.Request) *appError {
	id, e := int64Param(r, "bookId")
	if e != nil {
		return e
	}
	page, e := pageParams(r)
	if e != nil {
		return e
	}
	reviews, err := s.reviews.ReviewsForBook(r.Context(), id, page)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, reviews)
	return nil
}

func (s *Server) postReview(w http.ResponseWriter, r *http.Request) *appError {
	var req library.ReviewRequest
	if e := decodeJSON(r, &req); e != nil {
		return e
	}
	review, err := s.reviews.PostReview(r.Context(), userEmail(r), req)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusCreated, review)
	return nil
}

func (s *Server) reviewListed(w http.ResponseWriter, r *http.Request) *appError {
	id, e := int64Param(r, "bookId")
	if e != nil {
		return e
	}
	listed, err := s.reviews.UserReviewListed(r.Context(), userEmail(r), id)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, listed)
	return nil
}
