package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ocifkit/ocifkit/pkg/errors"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestToPDF(t *testing.T) {
	out, err := ToPDF(context.Background(), []byte(testSVG))
	if !Available() {
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Fatalf("ToPDF without rsvg-convert = %v, want UNSUPPORTED", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output is not a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestToPNG(t *testing.T) {
	out, err := ToPNG(context.Background(), []byte(testSVG), 0)
	if !Available() {
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Fatalf("ToPNG without rsvg-convert = %v, want UNSUPPORTED", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Errorf("output is not a PNG: %q", out[:min(len(out), 8)])
	}
}

func TestConvertContext(t *testing.T) {
	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if _, err := ToPDF(expired, []byte(testSVG)); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("ToPDF past deadline = %v, want TIMEOUT", err)
	}

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err := ToPNG(cancelled, []byte(testSVG), 2)
	if err == nil || errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("ToPNG cancelled = %v, want a plain cancellation error", err)
	}
}
