package format

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
)

var rows = [][]string{
	{"btn-1", "設定 Settings", "yes"},
	{"btn-22", "Search", "no"},
}

type table struct{}

func (table) Table() ([]string, [][]string) {
	return []string{"ID", "NAME", "ON"}, rows
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"a": 1}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "{\"a\":1}\n" {
		t.Fatalf("unexpected json: %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Write(&buf, 1, "edn", false)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat; got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written for an unknown format; got %q", buf.String())
	}
	for _, name := range []string{"", JSON, Text} {
		if err := Check(name); err != nil {
			t.Fatalf("Check(%q): %v", name, err)
		}
	}
}

func TestWriteJSON_EnvelopeKeepsTemplateCharacters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	env := Envelope{Data: map[string]string{"action": "open <url> & go"}}
	if err := Write(&buf, env, JSON, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, want := buf.String(), `{"data":{"action":"open <url> & go"}}`+"\n"; got != want {
		t.Fatalf("json = %q; want %q", got, want)
	}
}

func TestWriteText_UnwrapsEnvelopeTable(t *testing.T) {
	t.Parallel()

	var direct, wrapped bytes.Buffer
	if err := Write(&direct, table{}, Text, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(&wrapped, Envelope{Data: table{}, Meta: map[string]int{"n": 2}}, Text, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if diff := cmp.Diff(direct.String(), wrapped.String()); diff != "" {
		t.Fatalf("envelope should render as its table (-want +got):\n%s", diff)
	}
}

func TestWriteText_AlignsByDisplayWidth(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, table{}, "text", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	want := xansi.StringWidth(lines[0][:strings.Index(lines[0], "ON")])
	for i, l := range lines[1:] {
		last := rows[i][2]
		got := xansi.StringWidth(l[:strings.LastIndex(l, last)])
		if got != want {
			t.Fatalf("misaligned row %q: third column at cell %d, header at %d", l, got, want)
		}
	}
}

func TestRenderTable_TruncatesLongCells(t *testing.T) {
	t.Parallel()

	out := RenderTable([]string{"A"}, [][]string{{strings.Repeat("x", MaxCellWidth+10)}})
	if !strings.Contains(out, "…") {
		t.Fatalf("expected ellipsis in %q", out)
	}
}

func TestWriteText_NonTablerFallsBackToJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"a": 1}, "text", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\"a\": 1") {
		t.Fatalf("expected indented json, got %q", buf.String())
	}
}
