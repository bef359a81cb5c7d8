package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSlackServer(t *testing.T, status int, body map[string]any, seen *postMessageRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewSlackClient_RequiresToken(t *testing.T) {
	_, err := NewSlackClient("http://localhost", "", zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestSendMessage_Success(t *testing.T) {
	var seen postMessageRequest
	srv := newSlackServer(t, http.StatusOK, map[string]any{"ok": true}, &seen)

	client, err := NewSlackClient(srv.URL, "test_token", zap.NewNop())
	require.NoError(t, err)

	ok, raw, err := client.SendMessage(context.Background(), "test200", "test_channel", []Block{SectionBlock("*hi*")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"ok": true}, raw)
	assert.Equal(t, "test_channel", seen.Channel)
	assert.Equal(t, "test200", seen.Text)
	require.Len(t, seen.Blocks, 1)
	assert.Equal(t, "mrkdwn", seen.Blocks[0].Text.Type)
}

func TestSendMessage_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   map[string]any
	}{
		{"bad request", http.StatusBadRequest, map[string]any{"ok": false}},
		{"server error", http.StatusInternalServerError, map[string]any{"ok": false}},
		{"ok false", http.StatusOK, map[string]any{"ok": false, "error": "channel_not_found"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newSlackServer(t, tc.status, tc.body, nil)
			client, err := NewSlackClient(srv.URL, "test_token", zap.NewNop())
			require.NoError(t, err)

			ok, raw, err := client.SendMessage(context.Background(), "msg", "test_channel", nil)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, false, raw["ok"])
		})
	}
}

func TestSendMessage_TransportError(t *testing.T) {
	client, err := NewSlackClient("http://127.0.0.1:1", "test_token", zap.NewNop())
	require.NoError(t, err)

	ok, _, err := client.SendMessage(context.Background(), "msg", "test_channel", nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisDeduper(t *testing.T) {
	mr := miniredis.RunT(t)
	d := NewRedisDeduper(NewRedisClient(mr.Addr(), ""), "roster:paged:", time.Hour)
	ctx := context.Background()

	ok, err := d.Claim(ctx, "shift:1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Claim(ctx, "shift:1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("roster:paged:shift:1"))

	mr.FastForward(2 * time.Hour)
	ok, err = d.Claim(ctx, "shift:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoopDeduper(t *testing.T) {
	ok, err := NoopDeduper{}.Claim(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}
