package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options configures NewLibraryManager.
type Options struct {
	Driver  string
	DSN     string
	Policy  Policy
	Gateway PaymentGateway
	Logger  logrus.FieldLogger
}

// LibraryManager is a thin façade that opens the store and wires every
// service onto it.
type LibraryManager struct {
	db *Database

	Books    *BookService
	Admin    *AdminService
	Reviews  *ReviewService
	Messages *MessagesService
	Payments *PaymentService
}

// NewLibraryManager opens (or creates) the database described by opts.
func NewLibraryManager(opts Options) (*LibraryManager, error) {
	db, err := Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	return newManager(db, opts), nil
}

func newManager(db *Database, opts Options) *LibraryManager {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LibraryManager{
		db:       db,
		Books:    NewBookService(db, opts.Policy, log.WithField("service", "books")),
		Admin:    NewAdminService(db, log.WithField("service", "admin")),
		Reviews:  NewReviewService(db, opts.Policy, log.WithField("service", "reviews")),
		Messages: NewMessagesService(db, log.WithField("service", "messages")),
		Payments: NewPaymentService(db, opts.Gateway, log.WithField("service", "payments")),
	}
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// Store exposes the repository layer for read-only jobs.
func (lm *LibraryManager) Store() Store { return lm.db }

// ------------------ Catalog import ------------------

// ImportCatalog reads a JSON array of AddBookRequest from r and posts each
// through AdminService. It stops at the first invalid entry.
func (lm *LibraryManager) ImportCatalog(ctx context.Context, r io.Reader) ([]*Book, error) {
	var reqs []AddBookRequest
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	books := make([]*Book, 0, len(reqs))
	for i, req := range reqs {
		b, err := lm.Admin.PostBook(ctx, req)
		if err != nil {
			return books, fmt.Errorf("catalog entry %d (%q): %w", i, req.Title, err)
		}
		books = append(books, b)
	}
	return books, nil
}

// ImportCatalogFile opens path (relative paths resolve from cwd) and imports it.
func (lm *LibraryManager) ImportCatalogFile(ctx context.Context, path string) ([]*Book, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return lm.ImportCatalog(ctx, f)
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b *Book) string {
	return fmt.Sprintf("%-5d %-30s %-25s %3d/%-3d %s", b.ID, truncate(b.Title, 30), truncate(b.Author, 25), b.CopiesAvailable, b.Copies, b.Category)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
