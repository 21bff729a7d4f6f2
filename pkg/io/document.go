package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ocifkit/ocifkit/pkg/errors"
)

// MaxDocumentSize is the largest document accepted by [ReadDocument].
const MaxDocumentSize = 16 << 20

// ReadDocument reads a whole document from r, failing if it exceeds
// [MaxDocumentSize]. ReadDocument does not close r.
func ReadDocument(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := errors.ValidateInputSize(len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadFile reads the document at path. The name must end in .json or .json5.
func ReadFile(path string) ([]byte, error) {
	if err := errors.ValidateInputFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := ReadDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// OutputPath returns the artifact path for input rendered as ext. When dir
// is empty the artifact sits next to the input. A trailing ".json" or
// ".json5" is replaced, so "a.ocif.json" becomes "a.ocif.svg".
func OutputPath(input, dir, ext string) string {
	base := filepath.Base(input)
	for _, suffix := range []string{".json5", ".json"} {
		if strings.HasSuffix(strings.ToLower(base), suffix) {
			base = base[:len(base)-len(suffix)]
			break
		}
	}
	name := base + "." + strings.TrimPrefix(ext, ".")
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}
