package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.addBook(t, "Reviewed", 1, 1)
	desc := "Loved it"

	r, err := env.mgr.Reviews.PostReview(ctx, alice, ReviewRequest{BookID: b.ID, Rating: 4.5, ReviewDescription: &desc})
	require.NoError(t, err)
	assert.NotZero(t, r.ID)
	assert.Equal(t, "2024-03-01", formatDate(r.Date))

	listed, err := env.mgr.Reviews.UserReviewListed(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.True(t, listed)

	page, err := env.mgr.Reviews.ReviewsForBook(ctx, b.ID, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 4.5, page.Items[0].Rating)
	require.NotNil(t, page.Items[0].ReviewDescription)
	assert.Equal(t, desc, *page.Items[0].ReviewDescription)
}

func TestPostReviewWithoutDescription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.mgr.Reviews.PostReview(ctx, alice, ReviewRequest{BookID: 7, Rating: 3})
	require.NoError(t, err)

	r, err := env.db.FindReview(ctx, alice, 7)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Nil(t, r.ReviewDescription)
}

func TestPostReviewTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.mgr.Reviews.PostReview(ctx, alice, ReviewRequest{BookID: 1, Rating: 5})
	require.NoError(t, err)

	_, err = env.mgr.Reviews.PostReview(ctx, alice, ReviewRequest{BookID: 1, Rating: 1})
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, "Review already created", err.Error())

	page, err := env.mgr.Reviews.ReviewsForBook(ctx, 1, PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 5.0, page.Items[0].Rating)
}

func TestPostReviewRatingOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.mgr.Reviews.PostReview(context.Background(), alice, ReviewRequest{BookID: 1, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalid)

	listed, err := env.mgr.Reviews.UserReviewListed(context.Background(), alice, 1)
	require.NoError(t, err)
	assert.False(t, listed)
}
