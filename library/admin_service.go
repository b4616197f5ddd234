package library

import (
	"context"

	"github.com/sirupsen/logrus"
)

const (
	msgBookNotFound = "Book not found"
	msgBookLocked   = "Book not found or quantity locked"
)

// AdminService administers the catalog inventory.
type AdminService struct {
	store Store
	log   logrus.FieldLogger
}

func NewAdminService(store Store, log logrus.FieldLogger) *AdminService {
	return &AdminService{store: store, log: log}
}

// IncreaseBookQuantity adds one copy to the shelf.
func (s *AdminService) IncreaseBookQuantity(ctx context.Context, bookID int64) error {
	var book *Book
	err := s.store.InTx(ctx, func(q Queries) error {
		ok, err := q.AddCopy(ctx, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindNotFound, msgBookNotFound)
		}
		book, err = q.FindBook(ctx, bookID)
		return err
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"book": bookID, "copies": book.Copies}).Info("book quantity increased")
	return nil
}

// DecreaseBookQuantity removes one copy. Only a copy on the shelf can be
// removed, so it fails when every copy is out on loan.
func (s *AdminService) DecreaseBookQuantity(ctx context.Context, bookID int64) error {
	var book *Book
	err := s.store.InTx(ctx, func(q Queries) error {
		ok, err := q.RemoveCopy(ctx, bookID)
		if err != nil {
			return err
		}
		if book, err = q.FindBook(ctx, bookID); err != nil {
			return err
		}
		switch {
		case book == nil:
			return newError(KindNotFound, msgBookLocked)
		case !ok:
			return newError(KindNotAvailable, msgBookLocked)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"book": bookID, "copies": book.Copies}).Info("book quantity decreased")
	return nil
}

// PostBook adds a new title with every copy available.
func (s *AdminService) PostBook(ctx context.Context, req AddBookRequest) (*Book, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	book := req.toBook()
	id, err := s.store.InsertBook(ctx, book)
	if err != nil {
		return nil, err
	}
	book.ID = id
	s.log.WithFields(logrus.Fields{"book": id, "title": book.Title}).Info("book added")
	return book, nil
}

// DeleteBook removes the title together with its loans and reviews.
func (s *AdminService) DeleteBook(ctx context.Context, bookID int64) error {
	err := s.store.InTx(ctx, func(q Queries) error {
		book, err := q.FindBook(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return newError(KindNotFound, msgBookNotFound)
		}
		if err := q.DeleteBook(ctx, bookID); err != nil {
			return err
		}
		if err := q.DeleteCheckoutsByBookID(ctx, bookID); err != nil {
			return err
		}
		return q.DeleteReviewsByBookID(ctx, bookID)
	})
	if err != nil {
		return err
	}
	s.log.WithField("book", bookID).Info("book deleted")
	return nil
}
