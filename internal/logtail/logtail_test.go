package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func writeLines(t *testing.T, n int) (string, []string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plakview.log")
	var content strings.Builder
	var all []string
	for i := 1; i <= n; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		all = append(all, line)
	}
	if err := os.WriteFile(path, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path, all
}

func TestTail(t *testing.T) {
	path, all := writeLines(t, 10)

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"all (0)", 0, all},
		{"all (negative)", -1, all},
		{"last 5", 5, all[5:]},
		{"exactly all", 10, all},
		{"more than exists", 20, all},
		{"last one", 1, all[9:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(path, tt.maxLines)
			if err != nil {
				t.Fatalf("Tail: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tail(%d) = %v, want %v", tt.maxLines, got, tt.want)
			}
		})
	}
}

func TestTail_MissingFile(t *testing.T) {
	got, err := Tail(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no lines, got %v", got)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"warn","ts":"2026-03-01T10:20:30.000Z","logger":"actions","caller":"actions/actions.go:12","msg":"fetch failed","resource":"snapshots","page":2}`

	e := Parse(line)
	if e.Raw != "" {
		t.Fatalf("expected a decoded record, got raw %q", e.Raw)
	}
	if e.Level != zapcore.WarnLevel || e.Logger != "actions" || e.Message != "fetch failed" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Time.IsZero() || e.Time.UTC().Hour() != 10 {
		t.Fatalf("time not parsed: %v", e.Time)
	}
	if _, ok := e.Fields["caller"]; ok {
		t.Fatalf("reserved key kept in fields: %v", e.Fields)
	}
	if e.Fields["resource"] != "snapshots" || e.Fields["page"] != float64(2) {
		t.Fatalf("fields = %v", e.Fields)
	}

	formatted := e.Format()
	for _, want := range []string{"WARN", "actions: fetch failed", "page=2 resource=snapshots"} {
		if !strings.Contains(formatted, want) {
			t.Fatalf("Format() = %q, missing %q", formatted, want)
		}
	}
}

func TestParse_RawLines(t *testing.T) {
	for _, line := range []string{"panic: boom", `{"msg":"no level"}`, `{"level":"loud","msg":"x"}`} {
		e := Parse(line)
		if e.Raw != line {
			t.Errorf("Parse(%q).Raw = %q", line, e.Raw)
		}
		if !e.Enabled(zapcore.ErrorLevel) {
			t.Errorf("raw line %q filtered out", line)
		}
		if e.Format() != line {
			t.Errorf("Format() = %q, want the raw line", e.Format())
		}
	}
}

func TestEnabled(t *testing.T) {
	info := Parse(`{"level":"info","msg":"hello"}`)
	if !info.Enabled(zapcore.DebugLevel) || !info.Enabled(zapcore.InfoLevel) {
		t.Fatal("info should pass debug and info")
	}
	if info.Enabled(zapcore.WarnLevel) {
		t.Fatal("info should not pass warn")
	}
}
