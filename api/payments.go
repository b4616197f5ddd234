package api

import (
	"net/http"

	"library-service/library"
)

func (s *Server) paymentByUser(w http.ResponseWriter, r *http.Request) *appError {
	email, e := stringParam(r, "userEmail")
	if e != nil {
		return e
	}
	p, err := s.payments.FindPayment(r.Context(), email)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

func (s *Server) createPaymentIntent(w http.ResponseWriter, r *http.Request) *appError {
	var req library.PaymentInfoRequest
	if e := decodeJSON(r, &req); e != nil {
		return e
	}
	if req.ReceiptEmail == "" {
		req.ReceiptEmail = userEmail(r)
	}
	intent, err := s.payments.CreatePaymentIntent(r.Context(), req)
	if err != nil {
		return fromError(err)
	}
	writeJSON(w, http.StatusOK, intent)
	return nil
}

func (s *Server) completePayment(w http.ResponseWriter, r *http.Request) *appError {
	if err := s.payments.StripePayment(r.Context(), userEmail(r)); err != nil {
		return fromError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
