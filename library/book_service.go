package library

import (
	"context"

	"github.com/sirupsen/logrus"
)

const (
	msgNotCheckedOutable = "Book does not exist or already checked out by user"
	msgNotCheckedOut     = "Book does not exist or not checked out by user"
)

// BookService runs the loan workflow: checkout, return, renewal and the
// shelf views built on them.
type BookService struct {
	store  Store
	policy Policy
	log    logrus.FieldLogger
}

func NewBookService(store Store, policy Policy, log logrus.FieldLogger) *BookService {
	return &BookService{store: store, policy: policy, log: log}
}

// CheckoutBook lends one copy of bookID to userEmail and returns the book
// with its reduced availability.
func (s *BookService) CheckoutBook(ctx context.Context, userEmail string, bookID int64) (*Book, error) {
	var book *Book
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		if book, err = q.FindBook(ctx, bookID); err != nil {
			return err
		}
		existing, err := q.FindCheckout(ctx, userEmail, bookID)
		if err != nil {
			return err
		}
		if book == nil || existing != nil || book.CopiesAvailable <= 0 {
			return newError(KindNotAvailable, msgNotCheckedOutable)
		}

		loans, err := q.FindCheckoutsByUserEmail(ctx, userEmail)
		if err != nil {
			return err
		}
		if s.policy.MaxLoans > 0 && len(loans) >= s.policy.MaxLoans {
			return newError(KindNotAvailable, "Checkout limit reached")
		}
		if err := s.ensureNoFees(ctx, q, userEmail, loans); err != nil {
			return err
		}

		taken, err := q.DecrementAvailable(ctx, bookID)
		if err != nil {
			return err
		}
		if !taken {
			return newError(KindNotAvailable, msgNotCheckedOutable)
		}
		book.CopiesAvailable--

		today := s.policy.today()
		_, err = q.InsertCheckout(ctx, &Checkout{
			UserEmail:    userEmail,
			CheckoutDate: today,
			ReturnDate:   s.policy.dueDate(today),
			BookID:       bookID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user": userEmail, "book": bookID}).Info("book checked out")
	return book, nil
}

// ensureNoFees blocks borrowing while the user owes money or keeps an
// overdue book, and opens a zero balance for first-time borrowers.
func (s *BookService) ensureNoFees(ctx context.Context, q Queries, userEmail string, loans []*Checkout) error {
	today := s.policy.today()
	overdue := false
	for _, c := range loans {
		if c.ReturnDate.Before(today) {
			overdue = true
			break
		}
	}

	payment, err := q.FindPayment(ctx, userEmail)
	if err != nil {
		return err
	}
	if payment == nil {
		_, err := q.InsertPayment(ctx, &Payment{UserEmail: userEmail})
		if err != nil {
			return err
		}
		payment = &Payment{UserEmail: userEmail}
	}
	if payment.Amount > 0 || overdue {
		return newError(KindNotAvailable, "Outstanding fees")
	}
	return nil
}

// CheckoutBookByUser reports whether userEmail currently holds bookID.
func (s *BookService) CheckoutBookByUser(ctx context.Context, userEmail string, bookID int64) (bool, error) {
	c, err := s.store.FindCheckout(ctx, userEmail, bookID)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// CurrentLoansCount is the number of books userEmail holds.
func (s *BookService) CurrentLoansCount(ctx context.Context, userEmail string) (int, error) {
	loans, err := s.store.FindCheckoutsByUserEmail(ctx, userEmail)
	if err != nil {
		return 0, err
	}
	return len(loans), nil
}

// CurrentLoans lists the books userEmail holds with the days left on each.
func (s *BookService) CurrentLoans(ctx context.Context, userEmail string) ([]ShelfCurrentLoan, error) {
	loans, err := s.store.FindCheckoutsByUserEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(loans))
	byBook := make(map[int64]*Checkout, len(loans))
	for _, c := range loans {
		ids = append(ids, c.BookID)
		byBook[c.BookID] = c
	}

	books, err := s.store.FindBooksByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	today := s.policy.today()
	shelf := make([]ShelfCurrentLoan, 0, len(books))
	for _, b := range books {
		c, ok := byBook[b.ID]
		if !ok {
			continue
		}
		shelf = append(shelf, ShelfCurrentLoan{Book: *b, DaysLeft: daysBetween(today, c.ReturnDate)})
	}
	return shelf, nil
}

// ReturnBook closes userEmail's loan of bookID, restores one copy, charges
// any late fee and records the loan in the history.
func (s *BookService) ReturnBook(ctx context.Context, userEmail string, bookID int64) error {
	var fee float64
	err := s.store.InTx(ctx, func(q Queries) error {
		book, err := q.FindBook(ctx, bookID)
		if err != nil {
			return err
		}
		checkout, err := q.FindCheckout(ctx, userEmail, bookID)
		if err != nil {
			return err
		}
		if book == nil || checkout == nil {
			return newError(KindNotFound, msgNotCheckedOut)
		}

		if _, err := q.IncrementAvailable(ctx, bookID); err != nil {
			return err
		}

		today := s.policy.today()
		if late := daysBetween(checkout.ReturnDate, today); late > 0 && s.policy.LateFeePerDay > 0 {
			fee = float64(late) * s.policy.LateFeePerDay
			if err := s.chargeFee(ctx, q, userEmail, fee); err != nil {
				return err
			}
		}

		if err := q.DeleteCheckout(ctx, checkout.ID); err != nil {
			return err
		}
		_, err = q.InsertHistory(ctx, &History{
			UserEmail:    userEmail,
			CheckoutDate: checkout.CheckoutDate,
			ReturnedDate: today,
			Title:        book.Title,
			Author:       book.Author,
			Description:  book.Description,
			Img:          book.Img,
		})
		return err
	})
	if err != nil {
		return err
	}

	entry := s.log.WithFields(logrus.Fields{"user": userEmail, "book": bookID})
	if fee > 0 {
		entry = entry.WithField("late_fee", fee)
	}
	entry.Info("book returned")
	return nil
}

func (s *BookService) chargeFee(ctx context.Context, q Queries, userEmail string, fee float64) error {
	payment, err := q.FindPayment(ctx, userEmail)
	if err != nil {
		return err
	}
	if payment == nil {
		_, err := q.InsertPayment(ctx, &Payment{UserEmail: userEmail, Amount: fee})
		return err
	}
	payment.Amount += fee
	return q.UpdatePayment(ctx, payment)
}

// RenewLoan pushes the due date of userEmail's loan of bookID out by one
// loan period, provided the loan is inside the renewal window and not late.
func (s *BookService) RenewLoan(ctx context.Context, userEmail string, bookID int64) error {
	err := s.store.InTx(ctx, func(q Queries) error {
		checkout, err := q.FindCheckout(ctx, userEmail, bookID)
		if err != nil {
			return err
		}
		if checkout == nil {
			return newError(KindNotFound, msgNotCheckedOut)
		}

		left := daysBetween(s.policy.today(), checkout.ReturnDate)
		switch {
		case left < 0:
			return newError(KindNotAvailable, "Loan is overdue and cannot be renewed")
		case left > s.policy.RenewWindowDays:
			return newError(KindNotAvailable, "Loan is not yet eligible for renewal")
		}

		checkout.ReturnDate = s.policy.dueDate(checkout.ReturnDate)
		return q.UpdateCheckout(ctx, checkout)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user": userEmail, "book": bookID}).Info("loan renewed")
	return nil
}

// LoanHistory pages through userEmail's returned loans.
func (s *BookService) LoanHistory(ctx context.Context, userEmail string, page PageRequest) (*Page[*History], error) {
	return s.store.FindHistoriesByUserEmail(ctx, userEmail, page)
}

// FindBook returns the book or a NotFound error.
func (s *BookService) FindBook(ctx context.Context, bookID int64) (*Book, error) {
	b, err := s.store.FindBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, newError(KindNotFound, "Book not found")
	}
	return b, nil
}

func (s *BookService) ListBooks(ctx context.Context, page PageRequest) (*Page[*Book], error) {
	return s.store.ListBooks(ctx, page)
}

func (s *BookService) SearchByTitle(ctx context.Context, title string, page PageRequest) (*Page[*Book], error) {
	return s.store.FindBooksByTitleContaining(ctx, title, page)
}

func (s *BookService) SearchByCategory(ctx context.Context, category string, page PageRequest) (*Page[*Book], error) {
	return s.store.FindBooksByCategory(ctx, category, page)
}
