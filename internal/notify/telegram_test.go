package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramNotifier_Send(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotPayload sendMessagePayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("test-token", WithAPIURL(srv.URL))

	err := n.Send(context.Background(), "12345", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "12345", gotPayload.ChatID)
	assert.Equal(t, "hello", gotPayload.Text)
}

func TestTelegramNotifier_TruncatesLongMessages(t *testing.T) {
	t.Parallel()

	var gotPayload sendMessagePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", WithAPIURL(srv.URL))

	err := n.Send(context.Background(), "1", strings.Repeat("x", 5000))
	require.NoError(t, err)
	assert.Len(t, []rune(gotPayload.Text), 4096)
	assert.True(t, strings.HasSuffix(gotPayload.Text, "..."))
}

func TestTelegramNotifier_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", WithAPIURL(srv.URL))

	err := n.Send(context.Background(), "1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramNotifier_RateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("tok", WithAPIURL(srv.URL))

	err := n.Send(context.Background(), "1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		check func(t *testing.T, out string)
	}{
		{
			name: "short passes through",
			in:   "short",
			check: func(t *testing.T, out string) {
				assert.Equal(t, "short", out)
			},
		},
		{
			name: "exact limit passes through",
			in:   strings.Repeat("a", 4096),
			check: func(t *testing.T, out string) {
				assert.Len(t, []rune(out), 4096)
				assert.False(t, strings.HasSuffix(out, "..."))
			},
		},
		{
			name: "over limit truncated",
			in:   strings.Repeat("a", 4097),
			check: func(t *testing.T, out string) {
				assert.Len(t, []rune(out), 4096)
				assert.True(t, strings.HasSuffix(out, "..."))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.check(t, Truncate(tt.in))
		})
	}
}
