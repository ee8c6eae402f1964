package history

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type exportFile struct {
	History []Record `yaml:"history"`
}

// ExportYAML writes records to path as a YAML document under a history key.
func ExportYAML(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(exportFile{History: records}); err != nil {
		return fmt.Errorf("enc.Encode > %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("enc.Close > %w", err)
	}
	return f.Close()
}
