// Package testutil provides shared test helpers for creating config files and lexicon fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/stardict/internal/lexicon"
)

// ECDICTCSV is a small ECDICT export in dictionary order.
const ECDICTCSV = `word,phonetic,definition,translation,pos,collins,oxford,tag,bnc,frq,exchange,detail,audio
abandon,ə'bændən,to leave behind,放弃,v:100,3,1,cet4 ky,1835,1620,p:abandoned/d:abandoned,,
ability,ə'biliti,capacity,能力,,4,1,,923,1095,s:abilities,,
able,'eibl,having ability,能够,,5,1,,,,,,
apple,'æpl,a fruit,苹果,,3,1,,,,s:apples,,
`

// ECDICTEntries is the number of headwords in ECDICTCSV.
const ECDICTEntries = 4

// CreateSnapshot imports ECDICTCSV into dir and returns the snapshot path.
func CreateSnapshot(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "snapshot.db")
	inserted, err := lexicon.Import(context.Background(), strings.NewReader(ECDICTCSV), path)
	require.NoError(t, err)
	require.Equal(t, ECDICTEntries, inserted)
	return path
}

// ConfigOption configures optional fields of the generated config file.
type ConfigOption func(*testConfig)

type testConfig struct {
	speechURL      string
	speechCacheDir string
	withSnapshot   bool
}

// WithSpeechURL points the speech client at url, usually an httptest server.
func WithSpeechURL(url string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.speechURL = url
	}
}

// WithSpeechCache enables the speech cache under tmpDir/speech.
func WithSpeechCache() ConfigOption {
	return func(cfg *testConfig) {
		cfg.speechCacheDir = "speech"
	}
}

// WithoutSnapshot leaves lexicon.snapshot_path unset, so the lexicon cannot be seeded.
func WithoutSnapshot() ConfigOption {
	return func(cfg *testConfig) {
		cfg.withSnapshot = false
	}
}

// SetupTestConfig creates a config file whose databases all live in tmpDir.
// The lexicon is seeded from a snapshot of ECDICTCSV unless WithoutSnapshot is given.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{
		speechURL:    "http://127.0.0.1:1",
		withSnapshot: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "lexicon:\n  database_path: %s\n", filepath.Join(tmpDir, "ecdict.db"))
	if cfg.withSnapshot {
		fmt.Fprintf(&b, "  snapshot_path: %s\n", CreateSnapshot(t, tmpDir))
	}
	fmt.Fprintf(&b, "history:\n  driver: sqlite3\n  path: %s\n", filepath.Join(tmpDir, "history.db"))
	fmt.Fprintf(&b, "speech:\n  base_url: %s\n  timeout: 1s\n  retry_attempts: 0\n", cfg.speechURL)
	if cfg.speechCacheDir != "" {
		fmt.Fprintf(&b, "  cache_directory: %s\n", filepath.Join(tmpDir, cfg.speechCacheDir))
	}

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(b.String()), 0644))
	return cfgPath
}
