package library

import "time"

// Book represents catalog metadata and current availability of a title.
// CopiesAvailable never drops below zero nor exceeds Copies.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Description     string `json:"description"`
	Copies          int    `json:"copies"`
	CopiesAvailable int    `json:"copiesAvailable"`
	Category        string `json:"category"`
	Img             string `json:"img"`
}

// Checkout is an active loan of one copy of a book to a user.
type Checkout struct {
	ID           int64     `json:"id"`
	UserEmail    string    `json:"userEmail"`
	CheckoutDate time.Time `json:"checkoutDate"`
	ReturnDate   time.Time `json:"returnDate"`
	BookID       int64     `json:"bookId"`
}

// DaysOverdue counts the calendar days past ReturnDate at now; zero or
// negative means the loan is not late.
func (c *Checkout) DaysOverdue(now time.Time) int { return daysBetween(c.ReturnDate, now) }

// History is the append-only record of a returned loan.
type History struct {
	ID           int64     `json:"id"`
	UserEmail    string    `json:"userEmail"`
	CheckoutDate time.Time `json:"checkoutDate"`
	ReturnedDate time.Time `json:"returnedDate"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description"`
	Img          string    `json:"img"`
}

// Review is a user's rating of a book, unique per (UserEmail, BookID).
type Review struct {
	ID                int64     `json:"id"`
	UserEmail         string    `json:"userEmail"`
	Date              time.Time `json:"date"`
	Rating            float64   `json:"rating"`
	BookID            int64     `json:"bookId"`
	ReviewDescription *string   `json:"reviewDescription"`
}

// Message is a support question. It is open until an admin responds.
type Message struct {
	ID         int64   `json:"id"`
	UserEmail  string  `json:"userEmail"`
	Title      string  `json:"title"`
	Question   string  `json:"question"`
	AdminEmail *string `json:"adminEmail"`
	Response   *string `json:"response"`
	Closed     bool    `json:"closed"`
}

// Payment aggregates the outstanding fee balance of one user.
type Payment struct {
	ID        int64   `json:"id"`
	UserEmail string  `json:"userEmail"`
	Amount    float64 `json:"amount"`
}

// ShelfCurrentLoan pairs a borrowed book with the days left before it is due.
// DaysLeft is negative once the loan is overdue.
type ShelfCurrentLoan struct {
	Book     Book `json:"book"`
	DaysLeft int  `json:"daysLeft"`
}

// PaymentIntent is the client-confirmable intent returned by the payment gateway.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// PageRequest selects a zero-based page of results.
type PageRequest struct {
	Page int
	Size int
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// MaxPage bounds the page index so Page*Size stays a valid OFFSET.
const MaxPage = 1_000_000

func (p PageRequest) normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

func (p PageRequest) offset() int { return p.Page * p.Size }

// Page is one slice of a paged listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"totalElements"`
	TotalPages int   `json:"totalPages"`
}

func newPage[T any](items []T, req PageRequest, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{Items: items, Page: req.Page, Size: req.Size, Total: total, TotalPages: pages}
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool { return p.Page+1 < p.TotalPages }
