package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ocifkit/ocifkit/pkg/errors"
)

func TestReadDocument(t *testing.T) {
	data, err := ReadDocument(strings.NewReader(`{"ocif": "x"}`))
	if err != nil || string(data) != `{"ocif": "x"}` {
		t.Fatalf("ReadDocument = %q, %v", data, err)
	}

	big := strings.NewReader(strings.Repeat(" ", MaxDocumentSize+1))
	if _, err := ReadDocument(big); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("oversized document err = %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json5")
	if err := os.WriteFile(path, []byte("{ocif: 'x'}"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := ReadFile(path)
	if err != nil || string(data) != "{ocif: 'x'}" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := ReadFile(filepath.Join(dir, "doc.yaml")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("wrong extension err = %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "a.svg")
	if err := WriteFile(path, []byte("<svg/>")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "<svg/>" {
		t.Errorf("read back %q, %v", got, err)
	}
	if err := WriteFile("", nil); err == nil {
		t.Error("empty path accepted")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, dir, ext, want string
	}{
		{"canvas.json", "", "svg", "canvas.svg"},
		{"dir/canvas.ocif.json", "", ".tldr", filepath.Join("dir", "canvas.ocif.tldr")},
		{"a/b.JSON5", "out", "png", filepath.Join("out", "b.png")},
		{"noext", "", "dot", "noext.dot"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.input, tt.dir, tt.ext); got != tt.want {
			t.Errorf("OutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.dir, tt.ext, got, tt.want)
		}
	}
}
