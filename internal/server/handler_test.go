package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/stardict/internal/config"
	"github.com/at-ishikawa/stardict/internal/history"
	"github.com/at-ishikawa/stardict/internal/lexicon"
	"github.com/at-ishikawa/stardict/internal/lookup"
	mock_server "github.com/at-ishikawa/stardict/internal/mocks/server"
	mock_speech "github.com/at-ishikawa/stardict/internal/mocks/speech"
	"github.com/at-ishikawa/stardict/internal/speech"
)

func ptr[T any](v T) *T {
	return &v
}

func newTestRouter(t *testing.T, setupMocks func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	dict := mock_server.NewMockDictionary(ctrl)
	synth := mock_speech.NewMockSynthesizer(ctrl)
	if setupMocks != nil {
		setupMocks(dict, synth)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(dict, synth, config.ServerConfig{
		Port: 8080,
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}, logger)
}

func TestRouter(t *testing.T) {
	errStorage := errors.New("storage failure")

	tests := []struct {
		name       string
		method     string
		target     string
		setupMocks func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "word found",
			method: http.MethodGet,
			target: "/api/v1/words/Went",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().Search(gomock.Any(), "Went").Return(&lexicon.WordEntry{
					ID:           7,
					Word:         "went",
					StrippedWord: "went",
					Translation:  ptr("v. go的过去式"),
					Exchange:     ptr("0:go/1:p"),
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `{"id":7,"word":"went","sw":"went","translation":"v. go的过去式","collins":0,"oxford":0,` +
				`"exchange":"0:go/1:p","forms":[{"code":"0","label":"Original","word":"go"},{"code":"1","label":"Variant","word":"p"}]}`,
		},
		{
			name:   "word not found",
			method: http.MethodGet,
			target: "/api/v1/words/xylophon",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().Search(gomock.Any(), "xylophon").Return(nil, fmt.Errorf("%w: xylophon", lookup.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":{"code":"NOT_FOUND","message":"lookup: word not found: xylophon"}}`,
		},
		{
			name:   "blank word",
			method: http.MethodGet,
			target: "/api/v1/words/%20",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().Search(gomock.Any(), " ").Return(nil, lookup.ErrEmptyQuery)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":{"code":"INVALID_INPUT","message":"lookup: query is empty"}}`,
		},
		{
			name:   "word search fails",
			method: http.MethodGet,
			target: "/api/v1/words/apple",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().Search(gomock.Any(), "apple").Return(nil, errStorage)
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":{"code":"INTERNAL_SERVER_ERROR","message":"failed to search word"}}`,
		},
		{
			name:   "suggestions",
			method: http.MethodGet,
			target: "/api/v1/suggestions?q=ab&limit=2&strip=true&strict=1",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().Suggest(gomock.Any(), "ab", lookup.SuggestOptions{Limit: 2, Strip: true, Strict: true}).
					Return([]lexicon.Suggestion{{ID: 2, Word: "abandon"}, {ID: 3, Word: "ability"}}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"suggestions":[{"id":2,"word":"abandon"},{"id":3,"word":"ability"}]}`,
		},
		{
			name:       "suggestions without query",
			method:     http.MethodGet,
			target:     "/api/v1/suggestions",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "suggestions with invalid limit",
			method:     http.MethodGet,
			target:     "/api/v1/suggestions?q=ab&limit=ten",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":{"code":"INVALID_INPUT","message":"limit must be an integer"}}`,
		},
		{
			name:       "suggestions with limit out of range",
			method:     http.MethodGet,
			target:     "/api/v1/suggestions?q=ab&limit=1000",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "suggestions with invalid strict flag",
			method:     http.MethodGet,
			target:     "/api/v1/suggestions?q=ab&strict=maybe",
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":{"code":"INVALID_INPUT","message":"strict must be a boolean"}}`,
		},
		{
			name:   "history",
			method: http.MethodGet,
			target: "/api/v1/history",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().History(gomock.Any()).Return([]history.Record{
					{ID: 1, Word: "apple", Phonetic: ptr("'æpl"), LastQueriedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"history":[{"id":1,"word":"apple","phonetic":"'æpl","last_queried_at":"2026-01-02T03:04:05Z"}]}`,
		},
		{
			name:   "empty history",
			method: http.MethodGet,
			target: "/api/v1/history",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().History(gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"history":[]}`,
		},
		{
			name:   "clear history",
			method: http.MethodDelete,
			target: "/api/v1/history",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().ClearHistory(gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "clear history fails",
			method: http.MethodDelete,
			target: "/api/v1/history",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().ClearHistory(gomock.Any()).Return(errStorage)
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":{"code":"INTERNAL_SERVER_ERROR","message":"failed to clear history"}}`,
		},
		{
			name:   "speech",
			method: http.MethodGet,
			target: "/api/v1/speech/hello",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				synth.EXPECT().Synthesize(gomock.Any(), "hello").Return("https://cdn.example.com/hello.mp3", nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"word":"hello","audio":"https://cdn.example.com/hello.mp3"}`,
		},
		{
			name:   "speech api error",
			method: http.MethodGet,
			target: "/api/v1/speech/hello",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				synth.EXPECT().Synthesize(gomock.Any(), "hello").Return("", &speech.APIError{Code: 3, Message: "quota exceeded"})
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":{"code":"SPEECH_UNAVAILABLE","message":"speech: api error 3: quota exceeded"}}`,
		},
		{
			name:   "health",
			method: http.MethodGet,
			target: "/health",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().Count(gomock.Any()).Return(10, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok","entries":10}`,
		},
		{
			name:   "health with closed lexicon",
			method: http.MethodGet,
			target: "/health",
			setupMocks: func(dict *mock_server.MockDictionary, synth *mock_speech.MockSynthesizer) {
				dict.EXPECT().Count(gomock.Any()).Return(0, lexicon.ErrClosed)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":{"code":"UNAVAILABLE","message":"lexicon is unavailable"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.setupMocks)

			req := httptest.NewRequest(tt.method, tt.target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/history", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}
