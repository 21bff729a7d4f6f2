package errors

import (
	"strings"
	"testing"
)

func TestValidateInputFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"json", "canvas.json", false},
		{"json5", "canvas.json5", false},
		{"upper case extension", "CANVAS.JSON", false},
		{"with directory", "docs/examples/canvas.ocif.json", false},

		{"empty", "", true},
		{"no extension", "canvas", true},
		{"yaml", "canvas.yaml", true},
		{"null byte", "canvas\x00.json", true},
		{"newline", "can\nvas.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("expected INVALID_PATH code, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateInputSize(t *testing.T) {
	if err := ValidateInputSize(1024); err != nil {
		t.Errorf("small input should pass: %v", err)
	}
	if err := ValidateInputSize(maxInputSize + 1); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("oversized input should fail with INVALID_INPUT, got %v", err)
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#fff", false},
		{"#64748b", false},
		{"#64748bcc", false},
		{"lightgrey", false},

		{"", true},
		{"#12", true},
		{"#zzzzzz", true},
		{`red" onload="x`, true},
		{"rgb(1,2,3)", true},
	}

	for _, tt := range tests {
		err := ValidateColor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/canvas.svg", false},
		{"absolute", "/tmp/canvas.svg", false},

		{"empty", "", true},
		{"directory", "out/", true},
		{"control char", "out\x01.svg", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
