// Package api exposes the library services over HTTP.
package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"library-service/auth"
	"library-service/library"
)

// Config tunes the HTTP surface.
type Config struct {
	// CORSOrigin is the single browser origin allowed to call the API.
	CORSOrigin string
	// AccessLog receives combined-format access logs. Nil disables them.
	AccessLog io.Writer
}

type Server struct {
	books    *library.BookService
	admin    *library.AdminService
	reviews  *library.ReviewService
	messages *library.MessagesService
	payments *library.PaymentService

	verifier auth.Verifier
	log      logrus.FieldLogger
	cfg      Config
}

func NewServer(mgr *library.LibraryManager, verifier auth.Verifier, log logrus.FieldLogger, cfg Config) *Server {
	return &Server{
		books:    mgr.Books,
		admin:    mgr.Admin,
		reviews:  mgr.Reviews,
		messages: mgr.Messages,
		payments: mgr.Payments,
		verifier: verifier,
		log:      log,
		cfg:      cfg,
	}
}

// Handler returns the router wrapped in CORS, access logging and panic
// recovery.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{s.cfg.CORSOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(h)
	if s.cfg.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(s.cfg.AccessLog, h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.log),
		handlers.PrintRecoveryStack(true),
	)(h)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID)

	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})

	// Public reads. Other verbs on these paths get 405.
	public := func(path string, h appHandler) {
		r.Methods(http.MethodGet).Path(path).Handler(h)
		r.Path(path).HandlerFunc(getOnly)
	}
	public("/api/books", s.listBooks)
	public("/api/books/{id:[0-9]+}", s.getBook)
	public("/api/books/search/findByTitleContaining", s.booksByTitle)
	public("/api/books/search/findByCategory", s.booksByCategory)
	public("/api/reviews/search/findByBookId", s.reviewsByBook)
	public("/api/histories/search/findBooksByUserEmail", s.historiesByUser)
	public("/api/messages/search/findByUserEmail", s.messagesByUser)
	public("/api/messages/search/findByClosed", s.messagesByClosed)
	public("/api/payments/search/findByUserEmail", s.paymentByUser)

	// Signed-in users.
	user := func(method, path string, h appHandler) {
		r.Methods(method).Path(path).Handler(s.authenticated(h))
	}
	user(http.MethodPut, "/api/books/secure/checkout", s.checkoutBook)
	user(http.MethodGet, "/api/books/secure/ischeckedout/byuser", s.isCheckedOut)
	user(http.MethodGet, "/api/books/secure/currentloans/count", s.currentLoansCount)
	user(http.MethodGet, "/api/books/secure/currentloans", s.currentLoans)
	user(http.MethodPut, "/api/books/secure/return", s.returnBook)
	user(http.MethodPut, "/api/books/secure/renew/loan", s.renewLoan)
	user(http.MethodPost, "/api/reviews/secure", s.postReview)
	user(http.MethodGet, "/api/reviews/secure/user/book", s.reviewListed)
	user(http.MethodPost, "/api/messages/secure/add/message", s.postMessage)
	user(http.MethodPost, "/api/payment/secure/payment-intent", s.createPaymentIntent)
	user(http.MethodPut, "/api/payment/secure/payment-complete", s.completePayment)

	// Admins.
	admin := func(method, path string, h appHandler) {
		r.Methods(method).Path(path).Handler(s.authenticated(adminOnly(h)))
	}
	admin(http.MethodPut, "/api/messages/secure/admin/message", s.answerMessage)
	admin(http.MethodPost, "/api/admin/secure/add/book", s.addBook)
	admin(http.MethodPut, "/api/admin/secure/increase/book/quantity", s.increaseQuantity)
	admin(http.MethodPut, "/api/admin/secure/decrease/book/quantity", s.decreaseQuantity)
	admin(http.MethodDelete, "/api/admin/secure/delete/book", s.deleteBook)

	return r
}

func getOnly(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
