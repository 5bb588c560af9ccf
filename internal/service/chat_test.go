package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

func userMessage(content string) model.StoredMessage {
	return model.StoredMessage{Role: model.MessageRoleUser, Content: content}
}

func TestChatStore_SaveMessageCreatesSession(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	current, err := ts.chats.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	session, err := ts.chats.SaveMessage(ctx, userMessage("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", session.Title)

	current, err = ts.chats.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.ID, current.ID)
	assert.Equal(t, "hello", current.Title)
	require.Len(t, current.Messages, 1)
	assert.NotEmpty(t, current.Messages[0].ID)
}

func TestChatStore_TitleDerivation(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name  string
		first model.StoredMessage
		want  string
	}{
		{name: "80 characters truncated", first: userMessage(strings.Repeat("abcdefghij", 8)), want: strings.Repeat("abcdefghij", 5) + "..."},
		{name: "30 characters kept", first: userMessage(strings.Repeat("x", 30)), want: strings.Repeat("x", 30)},
		{name: "exactly 50 characters kept", first: userMessage(strings.Repeat("y", 50)), want: strings.Repeat("y", 50)},
		{name: "assistant first uses date", first: model.StoredMessage{Role: model.MessageRoleAssistant, Content: "Welcome"}, want: "Chat 2024-05-10"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestStores(t)
			session, err := ts.chats.SaveMessage(ctx, tc.first)
			require.NoError(t, err)
			assert.Equal(t, tc.want, session.Title)
		})
	}
}

func TestChatStore_ExistingSessionTitle(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	created, err := ts.chats.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Chat", created.Title)

	session, err := ts.chats.SaveMessage(ctx, userMessage("my back hurts"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, session.ID)
	assert.Equal(t, "my back hurts", session.Title)

	session, err = ts.chats.SaveMessage(ctx, userMessage("and my neck"))
	require.NoError(t, err)
	assert.Equal(t, "my back hurts", session.Title)
	assert.Len(t, session.Messages, 2)
}

func TestChatStore_DanglingPointer(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	require.NoError(t, ts.chats.SetCurrent(ctx, "does-not-exist"))
	current, err := ts.chats.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	session, err := ts.chats.SaveMessage(ctx, userMessage("hi"))
	require.NoError(t, err)
	assert.NotEqual(t, "does-not-exist", session.ID)

	current, err = ts.chats.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.ID, current.ID)
}

func TestChatStore_InvalidRole(t *testing.T) {
	ts := newTestStores(t)
	_, err := ts.chats.SaveMessage(context.Background(), model.StoredMessage{Role: "system", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestChatStore_SessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	first, err := ts.chats.SaveMessage(ctx, userMessage("first"))
	require.NoError(t, err)
	ts.clock.Advance(time.Minute)
	second, err := ts.chats.CreateSession(ctx)
	require.NoError(t, err)
	ts.clock.Advance(time.Minute)

	// touching the first session moves it to the front
	renamed, err := ts.chats.UpdateTitle(ctx, first.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)

	all, err := ts.chats.AllSessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	got, err := ts.chats.GetSession(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Chat", got.Title)

	_, err = ts.chats.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = ts.chats.UpdateTitle(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// second is current; deleting it clears the pointer
	require.NoError(t, ts.chats.DeleteSession(ctx, second.ID))
	current, err := ts.chats.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	require.NoError(t, ts.chats.DeleteSession(ctx, "missing"))
	all, err = ts.chats.AllSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, ts.chats.SetCurrent(ctx, first.ID))
	require.NoError(t, ts.chats.ClearAll(ctx))
	all, err = ts.chats.AllSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	current, err = ts.chats.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestChatStore_ImportReplace(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	_, err := ts.chats.SaveMessage(ctx, userMessage("old"))
	require.NoError(t, err)

	imported := []model.ChatSession{{ID: "s1", Title: "Imported", Messages: []model.StoredMessage{}, CreatedAt: testNow, LastUpdated: testNow}}
	require.NoError(t, ts.chats.ImportReplace(ctx, imported))

	all, err := ts.chats.AllSessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "s1", all[0].ID)

	current, err := ts.chats.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}
