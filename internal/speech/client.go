// Package speech resolves a word to a playable audio URL through the
// textreadtts.com conversion API.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/stardict/internal/config"
)

const (
	convertPath         = "/tts/convert"
	defaultRetryDelay   = 200 * time.Millisecond
	unknownErrorMessage = "unknown error"
)

// ErrEmptyAudio is returned when the API reports success without an audio URL.
var ErrEmptyAudio = errors.New("speech: response has no audio url")

// StatusError is a non-200 HTTP response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech: response error %d: %s", e.StatusCode, e.Body)
}

// APIError is a response whose code is not 0.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("speech: api error %d: %s", e.Code, e.Message)
}

//go:generate mockgen -source=client.go -destination=../mocks/speech/mock_client.go -package=mock_speech Synthesizer

// Synthesizer converts a word into an audio URL.
type Synthesizer interface {
	Synthesize(ctx context.Context, word string) (string, error)
}

type convertResponse struct {
	Code    int    `json:"code"`
	Audio   string `json:"audio"`
	Message string `json:"message"`
}

type Client struct {
	httpClient       *resty.Client
	accessKey        string
	language         string
	speaker          string
	maxRetryAttempts uint
	retryDelay       time.Duration
}

func NewClient(cfg config.SpeechConfig) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")

	return &Client{
		httpClient:       client,
		accessKey:        cfg.AccessKey,
		language:         cfg.Language,
		speaker:          cfg.Speaker,
		maxRetryAttempts: cfg.RetryAttempts,
		retryDelay:       defaultRetryDelay,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// isRetryableError reports whether a failed call may succeed when repeated:
// transport failures, 5xx and 429. API level errors are final.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError ||
			statusErr.StatusCode == http.StatusTooManyRequests
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) || errors.Is(err, ErrEmptyAudio) {
		return false
	}
	return true
}

// Synthesize returns the audio URL for word.
func (client *Client) Synthesize(ctx context.Context, word string) (string, error) {
	var audio string
	err := retry.Do(
		func() error {
			url, err := client.convert(ctx, word)
			if err != nil {
				return err
			}
			audio = url
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.Delay(client.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryableError),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Debug("retrying speech request",
				"word", word,
				"attempt", n+1,
				"error", err,
			)
		}),
	)
	if err != nil {
		return "", err
	}
	return audio, nil
}

func (client *Client) convert(ctx context.Context, word string) (string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"accessKey": client.accessKey,
			"language":  client.language,
			"speaker":   client.speaker,
			"text":      word,
		}).
		SetResult(&convertResponse{}).
		SetForceResponseContentType("application/json").
		Get(convertPath)
	if err != nil {
		return "", fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", &StatusError{StatusCode: response.StatusCode(), Body: response.String()}
	}

	body, ok := response.Result().(*convertResponse)
	if !ok || body == nil {
		return "", fmt.Errorf("unexpected response body: %s", response.String())
	}
	slog.Default().Debug("speech response",
		"word", word,
		"code", body.Code,
		"audio", body.Audio,
	)

	if body.Code != 0 {
		message := body.Message
		if message == "" {
			message = unknownErrorMessage
		}
		return "", &APIError{Code: body.Code, Message: message}
	}
	if body.Audio == "" {
		return "", ErrEmptyAudio
	}
	return body.Audio, nil
}
