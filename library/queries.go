package library

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// queries implements Queries over either the pool or a transaction.
type queries struct {
	db      dbtx
	dialect dialect
}

var _ Queries = (*queries)(nil)

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.rebind(query), args...)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.rebind(query), args...)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

// insert runs an INSERT and returns the generated id.
func (q *queries) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if q.dialect.returning {
		var id int64
		if err := q.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// execOne runs a conditional UPDATE and reports whether a row matched.
func (q *queries) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q *queries) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := q.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

const bookColumns = `id, title, author, COALESCE(description,''), copies, copies_available, COALESCE(category,''), COALESCE(img,'')`

func scanBook(s rowScanner) (*Book, error) {
	var b Book
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Copies, &b.CopiesAvailable, &b.Category, &b.Img); err != nil {
		return nil, err
	}
	return &b, nil
}

func (q *queries) scanBooks(ctx context.Context, query string, args ...any) ([]*Book, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (q *queries) FindBook(ctx context.Context, id int64) (*Book, error) {
	b, err := scanBook(q.queryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, errors.Wrapf(err, "find book %d", id)
}

func (q *queries) FindBooksByIDs(ctx context.Context, ids []int64) ([]*Book, error) {
	if len(ids) == 0 {
		return []*Book{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	books, err := q.scanBooks(ctx, `SELECT `+bookColumns+` FROM books WHERE id IN (`+marks+`) ORDER BY id`, args...)
	return books, errors.Wrap(err, "find books by ids")
}

func (q *queries) pageBooks(ctx context.Context, where string, page PageRequest, args ...any) (*Page[*Book], error) {
	page = page.normalize()
	total, err := q.count(ctx, `SELECT COUNT(*) FROM books`+where, args...)
	if err != nil {
		return nil, err
	}
	books, err := q.scanBooks(ctx, `SELECT `+bookColumns+` FROM books`+where+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, page.Size, page.offset())...)
	if err != nil {
		return nil, err
	}
	return newPage(books, page, total), nil
}

func (q *queries) ListBooks(ctx context.Context, page PageRequest) (*Page[*Book], error) {
	p, err := q.pageBooks(ctx, "", page)
	return p, errors.Wrap(err, "list books")
}

func (q *queries) FindBooksByTitleContaining(ctx context.Context, title string, page PageRequest) (*Page[*Book], error) {
	p, err := q.pageBooks(ctx, ` WHERE LOWER(title) LIKE ?`, page, "%"+strings.ToLower(title)+"%")
	return p, errors.Wrap(err, "find books by title")
}

func (q *queries) FindBooksByCategory(ctx context.Context, category string, page PageRequest) (*Page[*Book], error) {
	p, err := q.pageBooks(ctx, ` WHERE category=?`, page, category)
	return p, errors.Wrap(err, "find books by category")
}

func (q *queries) InsertBook(ctx context.Context, b *Book) (int64, error) {
	id, err := q.insert(ctx, `INSERT INTO books(title,author,description,copies,copies_available,category,img) VALUES(?,?,?,?,?,?,?)`,
		b.Title, b.Author, b.Description, b.Copies, b.CopiesAvailable, b.Category, b.Img)
	return id, errors.Wrap(err, "insert book")
}

func (q *queries) AddCopy(ctx context.Context, id int64) (bool, error) {
	ok, err := q.execOne(ctx, `UPDATE books SET copies = copies + 1, copies_available = copies_available + 1 WHERE id=?`, id)
	return ok, errors.Wrapf(err, "add copy of book %d", id)
}

func (q *queries) RemoveCopy(ctx context.Context, id int64) (bool, error) {
	ok, err := q.execOne(ctx, `UPDATE books SET copies = copies - 1, copies_available = copies_available - 1 WHERE id=? AND copies_available > 0 AND copies > 0`, id)
	return ok, errors.Wrapf(err, "remove copy of book %d", id)
}

func (q *queries) DecrementAvailable(ctx context.Context, id int64) (bool, error) {
	ok, err := q.execOne(ctx, `UPDATE books SET copies_available = copies_available - 1 WHERE id=? AND copies_available > 0`, id)
	return ok, errors.Wrapf(err, "decrement availability of book %d", id)
}

func (q *queries) IncrementAvailable(ctx context.Context, id int64) (bool, error) {
	ok, err := q.execOne(ctx, `UPDATE books SET copies_available = copies_available + 1 WHERE id=? AND copies_available < copies`, id)
	return ok, errors.Wrapf(err, "increment availability of book %d", id)
}

func (q *queries) DeleteBook(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM books WHERE id=?`, id)
	return errors.Wrapf(err, "delete book %d", id)
}

// ---------------------------------------------------------------------------
// Checkouts
// ---------------------------------------------------------------------------

const checkoutColumns = `id, user_email, checkout_date, return_date, book_id`

func scanCheckout(s rowScanner) (*Checkout, error) {
	var (
		c                   Checkout
		checkedOut, dueDate string
		err                 error
	)
	if err = s.Scan(&c.ID, &c.UserEmail, &checkedOut, &dueDate, &c.BookID); err != nil {
		return nil, err
	}
	if c.CheckoutDate, err = parseDate(checkedOut); err != nil {
		return nil, err
	}
	if c.ReturnDate, err = parseDate(dueDate); err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *queries) scanCheckouts(ctx context.Context, query string, args ...any) ([]*Checkout, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkouts []*Checkout
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}
		checkouts = append(checkouts, c)
	}
	return checkouts, rows.Err()
}

func (q *queries) FindCheckout(ctx context.Context, userEmail string, bookID int64) (*Checkout, error) {
	c, err := scanCheckout(q.queryRow(ctx, `SELECT `+checkoutColumns+` FROM checkouts WHERE user_email=? AND book_id=?`, userEmail, bookID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, errors.Wrapf(err, "find checkout of book %d", bookID)
}

func (q *queries) FindCheckoutsByUserEmail(ctx context.Context, userEmail string) ([]*Checkout, error) {
	cs, err := q.scanCheckouts(ctx, `SELECT `+checkoutColumns+` FROM checkouts WHERE user_email=? ORDER BY id`, userEmail)
	return cs, errors.Wrap(err, "find checkouts by user")
}

func (q *queries) FindCheckoutsDueBefore(ctx context.Context, day time.Time) ([]*Checkout, error) {
	cs, err := q.scanCheckouts(ctx, `SELECT `+checkoutColumns+` FROM checkouts WHERE return_date < ? ORDER BY return_date, id`, formatDate(day))
	return cs, errors.Wrap(err, "find overdue checkouts")
}

func (q *queries) InsertCheckout(ctx context.Context, c *Checkout) (int64, error) {
	id, err := q.insert(ctx, `INSERT INTO checkouts(user_email,checkout_date,return_date,book_id) VALUES(?,?,?,?)`,
		c.UserEmail, formatDate(c.CheckoutDate), formatDate(c.ReturnDate), c.BookID)
	return id, errors.Wrap(err, "insert checkout")
}

func (q *queries) UpdateCheckout(ctx context.Context, c *Checkout) error {
	_, err := q.exec(ctx, `UPDATE checkouts SET checkout_date=?, return_date=? WHERE id=?`,
		formatDate(c.CheckoutDate), formatDate(c.ReturnDate), c.ID)
	return errors.Wrapf(err, "update checkout %d", c.ID)
}

func (q *queries) DeleteCheckout(ctx context.Context, id int64) error {
	_, err := q.exec(ctx, `DELETE FROM checkouts WHERE id=?`, id)
	return errors.Wrapf(err, "delete checkout %d", id)
}

func (q *queries) DeleteCheckoutsByBookID(ctx context.Context, bookID int64) error {
	_, err := q.exec(ctx, `DELETE FROM checkouts WHERE book_id=?`, bookID)
	return errors.Wrapf(err, "delete checkouts of book %d", bookID)
}

// ---------------------------------------------------------------------------
// Histories
// ---------------------------------------------------------------------------

func (q *queries) FindHistoriesByUserEmail(ctx context.Context, userEmail string, page PageRequest) (*Page[*History], error) {
	page = page.normalize()
	total, err := q.count(ctx, `SELECT COUNT(*) FROM histories WHERE user_email=?`, userEmail)
	if err != nil {
		return nil, errors.Wrap(err, "count histories")
	}
	rows, err := q.query(ctx, `SELECT id, user_email, checkout_date, returned_date, title, author, COALESCE(description,''), COALESCE(img,'')
        FROM histories WHERE user_email=? ORDER BY id LIMIT ? OFFSET ?`, userEmail, page.Size, page.offset())
	if err != nil {
		return nil, errors.Wrap(err, "find histories")
	}
	defer rows.Close()

	var items []*History
	for rows.Next() {
		var (
			h                  History
			checkedOut, backOn string
		)
		if err := rows.Scan(&h.ID, &h.UserEmail, &checkedOut, &backOn, &h.Title, &h.Author, &h.Description, &h.Img); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		if h.CheckoutDate, err = parseDate(checkedOut); err != nil {
			return nil, err
		}
		if h.ReturnedDate, err = parseDate(backOn); err != nil {
			return nil, err
		}
		items = append(items, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "find histories")
	}
	return newPage(items, page, total), nil
}

func (q *queries) InsertHistory(ctx context.Context, h *History) (int64, error) {
	id, err := q.insert(ctx, `INSERT INTO histories(user_email,checkout_date,returned_date,title,author,description,img) VALUES(?,?,?,?,?,?,?)`,
		h.UserEmail, formatDate(h.CheckoutDate), formatDate(h.ReturnedDate), h.Title, h.Author, h.Description, h.Img)
	return id, errors.Wrap(err, "insert history")
}

// ---------------------------------------------------------------------------
// Reviews
// ---------------------------------------------------------------------------

const reviewColumns = `id, user_email, review_date, rating, book_id, review_description`

func scanReview(s rowScanner) (*Review, error) {
	var (
		r    Review
		date string
		desc sql.NullString
		err  error
	)
	if err = s.Scan(&r.ID, &r.UserEmail, &date, &r.Rating, &r.BookID, &desc); err != nil {
		return nil, err
	}
	if r.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	r.ReviewDescription = stringPtr(desc)
	return &r, nil
}

func (q *queries) FindReview(ctx context.Context, userEmail string, bookID int64) (*Review, error) {
	r, err := scanReview(q.queryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_email=? AND book_id=?`, userEmail, bookID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, errors.Wrapf(err, "find review of book %d", bookID)
}

func (q *queries) FindReviewsByBookID(ctx context.Context, bookID int64, page PageRequest) (*Page[*Review], error) {
	page = page.normalize()
	total, err := q.count(ctx, `SELECT COUNT(*) FROM reviews WHERE book_id=?`, bookID)
	if err != nil {
		return nil, errors.Wrap(err, "count reviews")
	}
	rows, err := q.query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE book_id=? ORDER BY id LIMIT ? OFFSET ?`, bookID, page.Size, page.offset())
	if err != nil {
		return nil, errors.Wrap(err, "find reviews")
	}
	defer rows.Close()

	var items []*Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan review")
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "find reviews")
	}
	return newPage(items, page, total), nil
}

func (q *queries) InsertReview(ctx context.Context, r *Review) (int64, error) {
	id, err := q.insert(ctx, `INSERT INTO reviews(user_email,review_date,rating,book_id,review_description) VALUES(?,?,?,?,?)`,
		r.UserEmail, formatDate(r.Date), r.Rating, r.BookID, nullString(r.ReviewDescription))
	return id, errors.Wrap(err, "insert review")
}

func (q *queries) DeleteReviewsByBookID(ctx context.Context, bookID int64) error {
	_, err := q.exec(ctx, `DELETE FROM reviews WHERE book_id=?`, bookID)
	return errors.Wrapf(err, "delete reviews of book %d", bookID)
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

const messageColumns = `id, user_email, title, question, admin_email, response, closed`

func scanMessage(s rowScanner) (*Message, error) {
	var (
		m               Message
		admin, response sql.NullString
	)
	if err := s.Scan(&m.ID, &m.UserEmail, &m.Title, &m.Question, &admin, &response, &m.Closed); err != nil {
		return nil, err
	}
	m.AdminEmail = stringPtr(admin)
	m.Response = stringPtr(response)
	return &m, nil
}

func (q *queries) pageMessages(ctx context.Context, where string, page PageRequest, args ...any) (*Page[*Message], error) {
	page = page.normalize()
	total, err := q.count(ctx, `SELECT COUNT(*) FROM messages`+where, args...)
	if err != nil {
		return nil, err
	}
	rows, err := q.query(ctx, `SELECT `+messageColumns+` FROM messages`+where+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, page.Size, page.offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPage(items, page, total), nil
}

func (q *queries) FindMessage(ctx context.Context, id int64) (*Message, error) {
	m, err := scanMessage(q.queryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, errors.Wrapf(err, "find message %d", id)
}

func (q *queries) FindMessagesByUserEmail(ctx context.Context, userEmail string, page PageRequest) (*Page[*Message], error) {
	p, err := q.pageMessages(ctx, ` WHERE user_email=?`, page, userEmail)
	return p, errors.Wrap(err, "find messages by user")
}

func (q *queries) FindMessagesByClosed(ctx context.Context, closed bool, page PageRequest) (*Page[*Message], error) {
	p, err := q.pageMessages(ctx, ` WHERE closed=?`, page, closed)
	return p, errors.Wrap(err, "find messages by state")
}

func (q *queries) InsertMessage(ctx context.Context, m *Message) (int64, error) {
	id, err := q.insert(ctx, `INSERT INTO messages(user_email,title,question,admin_email,response,closed) VALUES(?,?,?,?,?,?)`,
		m.UserEmail, m.Title, m.Question, nullString(m.AdminEmail), nullString(m.Response), m.Closed)
	return id, errors.Wrap(err, "insert message")
}

func (q *queries) UpdateMessage(ctx context.Context, m *Message) error {
	_, err := q.exec(ctx, `UPDATE messages SET title=?, question=?, admin_email=?, response=?, closed=? WHERE id=?`,
		m.Title, m.Question, nullString(m.AdminEmail), nullString(m.Response), m.Closed, m.ID)
	return errors.Wrapf(err, "update message %d", m.ID)
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

func (q *queries) FindPayment(ctx context.Context, userEmail string) (*Payment, error) {
	var p Payment
	err := q.queryRow(ctx, `SELECT id, user_email, amount FROM payments WHERE user_email=?`, userEmail).
		Scan(&p.ID, &p.UserEmail, &p.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find payment")
	}
	return &p, nil
}

func (q *queries) InsertPayment(ctx context.Context, p *Payment) (int64, error) {
	id, err := q.insert(ctx, `INSERT INTO payments(user_email,amount) VALUES(?,?)`, p.UserEmail, p.Amount)
	return id, errors.Wrap(err, "insert payment")
}

func (q *queries) UpdatePayment(ctx context.Context, p *Payment) error {
	_, err := q.exec(ctx, `UPDATE payments SET amount=? WHERE id=?`, p.Amount, p.ID)
	return errors.Wrapf(err, "update payment %d", p.ID)
}
