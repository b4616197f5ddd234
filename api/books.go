package api

import (
	"net/http"
)

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) *appError {
	page, e := pageParams(r)
	if e != nil {
		return e
	}
	books, err := s.books.ListBooks(r.Context(), page)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, books)
	return nil
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) *appError {
	id, e := pathID(r)
	if e != nil {
		return e
	}
	book, err := s.books.FindBook(r.Context(), id)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, book)
	return nil
}

func (s *Server) booksByTitle(w http.ResponseWriter, r *http.Request) *appError {
	page, e := pageParams(r)
	if e != nil {
		return e
	}
	books, err := s.books.SearchByTitle(r.Context(), r.URL.Query().Get("title"), page)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, books)
	return nil
}

func (s *Server) booksByCategory(w http.ResponseWriter, r *http.Request) *appError {
	category, e := stringParam(r, "category")
	if e != nil {
		return e
	}
	page, e := pageParams(r)
	if e != nil {
		return e
	}
	books, err := s.books.SearchByCategory(r.Context(), category, page)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, books)
	return nil
}

func (s *Server) historiesByUser(w http.ResponseWriter, r *http.Request) *appError {
	email, e := stringParam(r, "userEmail")
	if e != nil {
		return e
	}
	page, e := pageParams(r)
	if e != nil {
		return e
	}
	hist, err := s.books.LoanHistory(r.Context(), email, page)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, hist)
	return nil
}

// ------------------ Loans ------------------

func (s *Server) checkoutBook(w http.ResponseWriter, r *http.Request) *appError {
	id, e := int64Param(r, "bookId")
	if e != nil {
		return e
	}
	book, err := s.books.CheckoutBook(r.Context(), userEmail(r), id)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, book)
	return nil
}

func (s *Server) isCheckedOut(w http.ResponseWriter, r *http.Request) *appError {
	id, e := int64Param(r, "bookId")
	if e != nil {
		return e
	}
	held, err := s.books.CheckoutBookByUser(r.Context(), userEmail(r), id)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, held)
	return nil
}

func (s *Server) currentLoansCount(w http.ResponseWriter, r *http.Request) *appError {
	n, err := s.books.CurrentLoansCount(r.Context(), userEmail(r))
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, n)
	return nil
}

func (s *Server) currentLoans(w http.ResponseWriter, r *http.Request) *appError {
	shelf, err := s.books.CurrentLoans(r.Context(), userEmail(r))
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, shelf)
	return nil
}

func (s *Server) returnBook(w http.ResponseWriter, r *http.Request) *appError {
	id, e := int64Param(r, "bookId")
	if e != nil {
		return e
	}
	if err := s.books.ReturnBook(r.Context(), userEmail(r), id); err != nil {
		return fromError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) renewLoan(w http.ResponseWriter, r *http.Request) *appError {
	id, e := int64Param(r, "bookId")
	if e != nil {
		return e
	}
	if err := s.books.RenewLoan(r.Context(), userEmail(r), id); err != nil {
		return fromError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
