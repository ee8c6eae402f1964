package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/stardict/internal/config"
)

type stubResponse struct {
	status int
	body   string
}

func newTestClient(t *testing.T, responses []stubResponse, gotQuery *atomic.Value) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, convertPath, r.URL.Path)
		if gotQuery != nil {
			gotQuery.Store(r.URL.Query())
		}

		i := int(calls.Add(1)) - 1
		if i >= len(responses) {
			i = len(responses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(responses[i].status)
		_, _ = w.Write([]byte(responses[i].body))
	}))
	t.Cleanup(server.Close)

	client := NewClient(config.SpeechConfig{
		BaseURL:       server.URL,
		AccessKey:     "FREE",
		Language:      "english",
		Speaker:       "speaker5",
		Timeout:       time.Second,
		RetryAttempts: 2,
	})
	client.retryDelay = time.Millisecond
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, &calls
}

func TestClient_Synthesize(t *testing.T) {
	tests := []struct {
		name      string
		responses []stubResponse
		want      string
		wantErr   error
		wantCalls int32
	}{
		{
			name: "audio url",
			responses: []stubResponse{
				{status: http.StatusOK, body: `{"code":0,"audio":"https://cdn.example.com/hello.mp3"}`},
			},
			want:      "https://cdn.example.com/hello.mp3",
			wantCalls: 1,
		},
		{
			name: "api error is not retried",
			responses: []stubResponse{
				{status: http.StatusOK, body: `{"code":1001,"message":"quota exceeded"}`},
			},
			wantErr:   &APIError{Code: 1001, Message: "quota exceeded"},
			wantCalls: 1,
		},
		{
			name: "api error without message",
			responses: []stubResponse{
				{status: http.StatusOK, body: `{"code":5}`},
			},
			wantErr:   &APIError{Code: 5, Message: "unknown error"},
			wantCalls: 1,
		},
		{
			name: "empty audio",
			responses: []stubResponse{
				{status: http.StatusOK, body: `{"code":0,"audio":""}`},
			},
			wantErr:   ErrEmptyAudio,
			wantCalls: 1,
		},
		{
			name: "client error is not retried",
			responses: []stubResponse{
				{status: http.StatusNotFound, body: `not found`},
			},
			wantErr:   &StatusError{StatusCode: http.StatusNotFound, Body: "not found"},
			wantCalls: 1,
		},
		{
			name: "server error is retried until it succeeds",
			responses: []stubResponse{
				{status: http.StatusBadGateway, body: `bad gateway`},
				{status: http.StatusOK, body: `{"code":0,"audio":"https://cdn.example.com/retry.mp3"}`},
			},
			want:      "https://cdn.example.com/retry.mp3",
			wantCalls: 2,
		},
		{
			name: "rate limit is retried until attempts run out",
			responses: []stubResponse{
				{status: http.StatusTooManyRequests, body: `slow down`},
			},
			wantErr:   &StatusError{StatusCode: http.StatusTooManyRequests, Body: "slow down"},
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, tt.responses, nil)

			got, err := client.Synthesize(context.Background(), "hello")
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.Empty(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_Synthesize_QueryParameters(t *testing.T) {
	var gotQuery atomic.Value
	client, _ := newTestClient(t, []stubResponse{
		{status: http.StatusOK, body: `{"code":0,"audio":"https://cdn.example.com/a.mp3"}`},
	}, &gotQuery)

	_, err := client.Synthesize(context.Background(), "ice cream & cake")
	require.NoError(t, err)

	query, ok := gotQuery.Load().(url.Values)
	require.True(t, ok)
	assert.Equal(t, "FREE", query.Get("accessKey"))
	assert.Equal(t, "english", query.Get("language"))
	assert.Equal(t, "speaker5", query.Get("speaker"))
	assert.Equal(t, "ice cream & cake", query.Get("text"))
}

func TestClient_Synthesize_ContextCanceled(t *testing.T) {
	client, calls := newTestClient(t, []stubResponse{
		{status: http.StatusOK, body: `{"code":0,"audio":"https://cdn.example.com/a.mp3"}`},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Synthesize(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "transport", err: assert.AnError, want: true},
		{name: "server error", err: &StatusError{StatusCode: http.StatusServiceUnavailable}, want: true},
		{name: "rate limit", err: &StatusError{StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "bad request", err: &StatusError{StatusCode: http.StatusBadRequest}, want: false},
		{name: "api error", err: &APIError{Code: 1}, want: false},
		{name: "empty audio", err: ErrEmptyAudio, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
