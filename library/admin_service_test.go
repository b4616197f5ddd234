package library

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncreaseBookQuantity(t *testing.T) {
	env := newTestEnv(t)
	b := env.addBook(t, "Grow", 2, 1)

	require.NoError(t, env.mgr.Admin.IncreaseBookQuantity(context.Background(), b.ID))
	got := env.book(t, b.ID)
	assert.Equal(t, 3, got.Copies)
	assert.Equal(t, 2, got.CopiesAvailable)

	err := env.mgr.Admin.IncreaseBookQuantity(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Book not found", err.Error())
}

func TestDecreaseBookQuantity(t *testing.T) {
	tests := []struct {
		name             string
		copies, avail    int
		wantErr          error
		wantCopies       int
		wantAvailability int
	}{
		{name: "shelf copy removed", copies: 3, avail: 2, wantCopies: 2, wantAvailability: 1},
		{name: "empty shelf", copies: 0, avail: 0, wantErr: ErrNotAvailable},
		{name: "all copies on loan", copies: 2, avail: 0, wantErr: ErrNotAvailable, wantCopies: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			b := env.addBook(t, "Shrink", tt.copies, tt.avail)

			err := env.mgr.Admin.DecreaseBookQuantity(context.Background(), b.ID)
			got := env.book(t, b.ID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, msgBookLocked, err.Error())
				assert.Equal(t, tt.copies, got.Copies)
				assert.Equal(t, tt.avail, got.CopiesAvailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCopies, got.Copies)
			assert.Equal(t, tt.wantAvailability, got.CopiesAvailable)
		})
	}
}

func TestDecreaseBookQuantityMissing(t *testing.T) {
	env := newTestEnv(t)
	err := env.mgr.Admin.DecreaseBookQuantity(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, msgBookLocked, err.Error())
}

func TestPostBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.mgr.Admin.PostBook(ctx, AddBookRequest{
		Title:    "  The Pragmatic Programmer ",
		Author:   "Hunt & Thomas",
		Copies:   4,
		Category: "BE",
	})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, "The Pragmatic Programmer", b.Title)

	stored := env.book(t, b.ID)
	assert.Equal(t, 4, stored.Copies)
	assert.Equal(t, 4, stored.CopiesAvailable)
}

func TestPostBookValidation(t *testing.T) {
	env := newTestEnv(t)
	for _, req := range []AddBookRequest{
		{Author: "Nobody", Copies: 1},
		{Title: "Anonymous", Copies: 1},
		{Title: "Negative", Author: "X", Copies: -1},
	} {
		_, err := env.mgr.Admin.PostBook(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalid, "%+v", req)
	}

	page, err := env.db.ListBooks(context.Background(), PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestDeleteBookCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doomed := env.addBook(t, "Doomed", 2, 2)
	kept := env.addBook(t, "Kept", 2, 2)

	for _, id := range []int64{doomed.ID, kept.ID} {
		_, err := env.mgr.Books.CheckoutBook(ctx, alice, id)
		require.NoError(t, err)
		_, err = env.mgr.Reviews.PostReview(ctx, alice, ReviewRequest{BookID: id, Rating: 4})
		require.NoError(t, err)
	}

	require.NoError(t, env.mgr.Admin.DeleteBook(ctx, doomed.ID))

	b, err := env.db.FindBook(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, b)

	loans, err := env.db.FindCheckoutsByUserEmail(ctx, alice)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, kept.ID, loans[0].BookID)

	reviews, err := env.db.FindReviewsByBookID(ctx, doomed.ID, PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, reviews.Total)

	reviews, err = env.db.FindReviewsByBookID(ctx, kept.ID, PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, reviews.Total)

	assert.ErrorIs(t, env.mgr.Admin.DeleteBook(ctx, doomed.ID), ErrNotFound)
}

// returnFirst runs a loan return ahead of every copy-count change, the way a
// concurrent return committing mid-operation would land.
type returnFirst struct {
	*Database
}

func (r returnFirst) InTx(ctx context.Context, fn func(q Queries) error) error {
	return r.Database.InTx(ctx, func(q Queries) error {
		return fn(returningQueries{q})
	})
}

type returningQueries struct {
	Queries
}

func (q returningQueries) AddCopy(ctx context.Context, id int64) (bool, error) {
	if _, err := q.IncrementAvailable(ctx, id); err != nil {
		return false, err
	}
	return q.Queries.AddCopy(ctx, id)
}

func (q returningQueries) RemoveCopy(ctx context.Context, id int64) (bool, error) {
	if _, err := q.IncrementAvailable(ctx, id); err != nil {
		return false, err
	}
	return q.Queries.RemoveCopy(ctx, id)
}

func TestQuantityChangesKeepInterleavedReturns(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(returnFirst{env.db}, logrus.New())
	ctx := context.Background()

	b := env.addBook(t, "Busy", 1, 0)
	require.NoError(t, admin.IncreaseBookQuantity(ctx, b.ID))
	got := env.book(t, b.ID)
	assert.Equal(t, 2, got.Copies)
	assert.Equal(t, 2, got.CopiesAvailable, "returned copy kept")

	b = env.addBook(t, "Lent", 1, 0)
	require.NoError(t, admin.DecreaseBookQuantity(ctx, b.ID))
	got = env.book(t, b.ID)
	assert.Equal(t, 0, got.Copies)
	assert.Equal(t, 0, got.CopiesAvailable)
}
