package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	"github.com/ocifkit/ocifkit/pkg/validate"
)

func TestNewReportModel(t *testing.T) {
	m := newReportModel([]fileReport{
		invalidReport(),
		{File: "ok.json", Result: validate.Result{Valid: true}},
		{File: "gone.json", Err: ocerrors.New(ocerrors.ErrCodeFileNotFound, "open gone.json")},
	})

	if m.Valid != 1 {
		t.Errorf("Valid = %d, want 1", m.Valid)
	}
	if len(m.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(m.Items))
	}
	if m.Items[0].Position != "3:12" || m.Items[0].Path != "/nodes/0/size" {
		t.Errorf("items[0] = %+v", m.Items[0])
	}
	if m.Items[2].File != "gone.json" || m.Items[2].Message != "open gone.json" || m.Items[2].Position != "" {
		t.Errorf("items[2] = %+v", m.Items[2])
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReportModelNavigation(t *testing.T) {
	reports := make([]fileReport, 0, 10)
	for i := 0; i < 10; i++ {
		reports = append(reports, invalidReport())
	}
	var model tea.Model = newReportModel(reports)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 120, Height: 17})

	m := model.(ReportModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}

	for i := 0; i < 7; i++ {
		model, _ = model.Update(key("down"))
	}
	m = model.(ReportModel)
	if m.Cursor != 7 || m.Offset != 3 {
		t.Errorf("after 7 downs: cursor %d offset %d, want 7 and 3", m.Cursor, m.Offset)
	}

	model, _ = model.Update(key("k"))
	model, _ = model.Update(key("g"))
	m = model.(ReportModel)
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("after home: cursor %d offset %d", m.Cursor, m.Offset)
	}

	model, _ = model.Update(key("up"))
	if m = model.(ReportModel); m.Cursor != 0 {
		t.Errorf("cursor moved above the first item: %d", m.Cursor)
	}

	model, _ = model.Update(key("G"))
	if m = model.(ReportModel); m.Cursor != 19 || m.Offset != 15 {
		t.Errorf("after end: cursor %d offset %d", m.Cursor, m.Offset)
	}

	if _, cmd := model.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestReportModelView(t *testing.T) {
	view := newReportModel([]fileReport{invalidReport()}).View()
	for _, want := range []string{"Validation Errors", "diagram.json", "3:12", "must be array", "got number", `"size": 5,`, "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	empty := newReportModel([]fileReport{{File: "ok.json", Result: validate.Result{Valid: true}}}).View()
	if !strings.Contains(empty, "All 1 documents are valid") {
		t.Errorf("empty view = %q", empty)
	}
}
