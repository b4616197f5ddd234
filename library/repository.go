package library

import (
	"context"
	"time"
)

// Lookups return (nil, nil) when the row does not exist.

type BookRepository interface {
	FindBook(ctx context.Context, id int64) (*Book, error)
	FindBooksByIDs(ctx context.Context, ids []int64) ([]*Book, error)
	ListBooks(ctx context.Context, page PageRequest) (*Page[*Book], error)
	FindBooksByTitleContaining(ctx context.Context, title string, page PageRequest) (*Page[*Book], error)
	FindBooksByCategory(ctx context.Context, category string, page PageRequest) (*Page[*Book], error)
	InsertBook(ctx context.Context, b *Book) (int64, error)
	// AddCopy adds one copy to the shelf and reports whether the book exists.
	AddCopy(ctx context.Context, id int64) (bool, error)
	// RemoveCopy removes one shelf copy if any is available and reports whether it did.
	RemoveCopy(ctx context.Context, id int64) (bool, error)
	// DecrementAvailable takes one copy if any is available and reports whether it did.
	DecrementAvailable(ctx context.Context, id int64) (bool, error)
	// IncrementAvailable returns one copy unless availability already equals copies.
	IncrementAvailable(ctx context.Context, id int64) (bool, error)
	DeleteBook(ctx context.Context, id int64) error
}

type CheckoutRepository interface {
	FindCheckout(ctx context.Context, userEmail string, bookID int64) (*Checkout, error)
	FindCheckoutsByUserEmail(ctx context.Context, userEmail string) ([]*Checkout, error)
	FindCheckoutsDueBefore(ctx context.Context, day time.Time) ([]*Checkout, error)
	InsertCheckout(ctx context.Context, c *Checkout) (int64, error)
	UpdateCheckout(ctx context.Context, c *Checkout) error
	DeleteCheckout(ctx context.Context, id int64) error
	DeleteCheckoutsByBookID(ctx context.Context, bookID int64) error
}

type HistoryRepository interface {
	FindHistoriesByUserEmail(ctx context.Context, userEmail string, page PageRequest) (*Page[*History], error)
	InsertHistory(ctx context.Context, h *History) (int64, error)
}

type ReviewRepository interface {
	FindReview(ctx context.Context, userEmail string, bookID int64) (*Review, error)
	FindReviewsByBookID(ctx context.Context, bookID int64, page PageRequest) (*Page[*Review], error)
	InsertReview(ctx context.Context, r *Review) (int64, error)
	DeleteReviewsByBookID(ctx context.Context, bookID int64) error
}

type MessageRepository interface {
	FindMessage(ctx context.Context, id int64) (*Message, error)
	FindMessagesByUserEmail(ctx context.Context, userEmail string, page PageRequest) (*Page[*Message], error)
	FindMessagesByClosed(ctx context.Context, closed bool, page PageRequest) (*Page[*Message], error)
	InsertMessage(ctx context.Context, m *Message) (int64, error)
	UpdateMessage(ctx context.Context, m *Message) error
}

type PaymentRepository interface {
	FindPayment(ctx context.Context, userEmail string) (*Payment, error)
	InsertPayment(ctx context.Context, p *Payment) (int64, error)
	UpdatePayment(ctx context.Context, p *Payment) error
}

// Queries is the full set of repository operations, bound either to the
// database or to an open transaction.
type Queries interface {
	BookRepository
	CheckoutRepository
	HistoryRepository
	ReviewRepository
	MessageRepository
	PaymentRepository
}

// Store runs fn inside a single transaction; fn's error rolls it back.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}
