package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	msg, err := env.mgr.Messages.PostMessage(ctx, MessageRequest{Title: "Hours", Question: "When do you open?"}, alice)
	require.NoError(t, err)
	assert.False(t, msg.Closed)
	assert.Nil(t, msg.Response)

	open, err := env.mgr.Messages.MessagesByClosed(ctx, false, PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, open.Total)

	answered, err := env.mgr.Messages.PutMessage(ctx, AdminQuestionRequest{ID: msg.ID, Response: "Nine to five"}, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, answered.Closed)
	require.NotNil(t, answered.AdminEmail)
	assert.Equal(t, "admin@example.com", *answered.AdminEmail)

	mine, err := env.mgr.Messages.MessagesByUser(ctx, alice, PageRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.True(t, mine.Items[0].Closed)
	require.NotNil(t, mine.Items[0].Response)
	assert.Equal(t, "Nine to five", *mine.Items[0].Response)

	open, err = env.mgr.Messages.MessagesByClosed(ctx, false, PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, open.Total)
}

func TestPutMessageMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.mgr.Messages.PutMessage(context.Background(), AdminQuestionRequest{ID: 404, Response: "?"}, "admin@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Message does not exist", err.Error())
}

func TestPutMessageAlreadyClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	msg, err := env.mgr.Messages.PostMessage(ctx, MessageRequest{Title: "T", Question: "Q"}, alice)
	require.NoError(t, err)

	_, err = env.mgr.Messages.PutMessage(ctx, AdminQuestionRequest{ID: msg.ID, Response: "first"}, "a1@example.com")
	require.NoError(t, err)
	_, err = env.mgr.Messages.PutMessage(ctx, AdminQuestionRequest{ID: msg.ID, Response: "second"}, "a2@example.com")
	assert.ErrorIs(t, err, ErrNotAvailable)

	stored, err := env.db.FindMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", *stored.Response)
}

func TestPostMessageRequiresContent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.mgr.Messages.PostMessage(context.Background(), MessageRequest{Title: " "}, alice)
	assert.ErrorIs(t, err, ErrInvalid)
}
