package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/stardict/internal/history"
	"github.com/at-ishikawa/stardict/internal/lexicon"
	"github.com/at-ishikawa/stardict/internal/lookup"
	"github.com/at-ishikawa/stardict/internal/speech"
)

//go:generate mockgen -source=handler.go -destination=../mocks/server/mock_handler.go -package=mock_server Dictionary

// Dictionary is the lookup surface the API serves. *lookup.Service
// implements it.
type Dictionary interface {
	Search(ctx context.Context, query string) (*lexicon.WordEntry, error)
	Suggest(ctx context.Context, query string, opts lookup.SuggestOptions) ([]lexicon.Suggestion, error)
	History(ctx context.Context) ([]history.Record, error)
	ClearHistory(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	dictionary  Dictionary
	synthesizer speech.Synthesizer
	validate    *validator.Validate
	logger      *slog.Logger
}

func NewHandler(dictionary Dictionary, synthesizer speech.Synthesizer, logger *slog.Logger) *Handler {
	return &Handler{
		dictionary:  dictionary,
		synthesizer: synthesizer,
		validate:    validator.New(),
		logger:      logger,
	}
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type WordResponse struct {
	lexicon.WordEntry
	Forms []lexicon.ExchangeForm `json:"forms,omitempty"`
}

type SuggestionsResponse struct {
	Suggestions []lexicon.Suggestion `json:"suggestions"`
}

type HistoryResponse struct {
	History []history.Record `json:"history"`
}

type SpeechResponse struct {
	Word  string `json:"word"`
	Audio string `json:"audio"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
}

type suggestionsQuery struct {
	Query  string `validate:"required,max=64"`
	Limit  int    `validate:"min=0,max=100"`
	Strip  bool
	Strict bool
}

func (h *Handler) GetWord(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")

	entry, err := h.dictionary.Search(r.Context(), word)
	switch {
	case errors.Is(err, lookup.ErrEmptyQuery):
		h.respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	case errors.Is(err, lookup.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	case err != nil:
		h.logger.Error("failed to search word", slog.String("word", word), slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to search word")
		return
	}

	h.respondJSON(w, http.StatusOK, WordResponse{
		WordEntry: *entry,
		Forms:     entry.ExchangeForms(),
	})
}

func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := suggestionsQuery{Query: values.Get("q")}

	var err error
	if v := values.Get("limit"); v != "" {
		if query.Limit, err = strconv.Atoi(v); err != nil {
			h.respondError(w, http.StatusBadRequest, "INVALID_INPUT", "limit must be an integer")
			return
		}
	}
	for name, dst := range map[string]*bool{"strip": &query.Strip, "strict": &query.Strict} {
		if v := values.Get(name); v != "" {
			if *dst, err = strconv.ParseBool(v); err != nil {
				h.respondError(w, http.StatusBadRequest, "INVALID_INPUT", name+" must be a boolean")
				return
			}
		}
	}
	if err := h.validate.Struct(query); err != nil {
		h.respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	suggestions, err := h.dictionary.Suggest(r.Context(), query.Query, lookup.SuggestOptions{
		Limit:  query.Limit,
		Strip:  query.Strip,
		Strict: query.Strict,
	})
	if err != nil {
		h.logger.Error("failed to suggest words", slog.String("query", query.Query), slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to suggest words")
		return
	}
	h.respondJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.dictionary.History(r.Context())
	if err != nil {
		h.logger.Error("failed to list history", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to list history")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	h.respondJSON(w, http.StatusOK, HistoryResponse{History: records})
}

func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.dictionary.ClearHistory(r.Context()); err != nil {
		h.logger.Error("failed to clear history", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSpeech(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")

	audio, err := h.synthesizer.Synthesize(r.Context(), word)
	if err != nil {
		h.logger.Warn("speech synthesis failed", slog.String("word", word), slog.Any("error", err))
		h.respondError(w, http.StatusBadGateway, "SPEECH_UNAVAILABLE", err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, SpeechResponse{Word: word, Audio: audio})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.dictionary.Count(r.Context())
	if err != nil {
		h.logger.Error("health check failed", slog.Any("error", err))
		h.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "lexicon is unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Entries: count})
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal response", slog.Any("error", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"failed to build response"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, errorCode, message string) {
	h.respondJSON(w, code, ErrorResponse{Error: ErrorDetail{Code: errorCode, Message: message}})
}
