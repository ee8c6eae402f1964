package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileCache remembers the audio URL of each word in a JSON file under
// rootDir and only asks next for words it has not seen.
type FileCache struct {
	rootDir string
	next    Synthesizer
}

var _ Synthesizer = (*FileCache)(nil)

type cachedSpeech struct {
	Word  string `json:"word"`
	Audio string `json:"audio"`
}

func NewFileCache(cacheDirectory string, next Synthesizer) *FileCache {
	return &FileCache{
		rootDir: cacheDirectory,
		next:    next,
	}
}

func (cache *FileCache) filePath(word string) string {
	return filepath.Join(cache.rootDir, url.PathEscape(strings.ToLower(word))+".json")
}

func (cache *FileCache) Synthesize(ctx context.Context, word string) (string, error) {
	cached, err := cache.read(word)
	if err == nil {
		return cached.Audio, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("cache.read > %w", err)
	}

	audio, err := cache.next.Synthesize(ctx, word)
	if err != nil {
		return "", err
	}
	if err := cache.write(cachedSpeech{Word: word, Audio: audio}); err != nil {
		slog.Default().Warn("failed to cache speech", "word", word, "error", err)
	}
	return audio, nil
}

func (cache *FileCache) read(word string) (*cachedSpeech, error) {
	contents, err := os.ReadFile(cache.filePath(word))
	if err != nil {
		return nil, err
	}

	var cached cachedSpeech
	if err := json.Unmarshal(contents, &cached); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", cache.filePath(word), err)
	}
	if cached.Audio == "" {
		return nil, fmt.Errorf("%s: %w", cache.filePath(word), ErrEmptyAudio)
	}
	return &cached, nil
}

func (cache *FileCache) write(cached cachedSpeech) error {
	if err := os.MkdirAll(cache.rootDir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", cache.rootDir, err)
	}
	contents, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}
	if err := os.WriteFile(cache.filePath(cached.Word), contents, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile > %w", err)
	}
	return nil
}
