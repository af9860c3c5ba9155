package clip

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func errFake(msg string) error { return errors.New(msg) }

func resetStubs() func() {
	origNative, origOSC := nativeWriteAll, osc52WriteAll
	return func() {
		nativeWriteAll = origNative
		osc52WriteAll = origOSC
	}
}

func TestWriteAll_PrefersNative(t *testing.T) {
	t.Cleanup(resetStubs())
	var got string
	nativeWriteAll = func(s string) error { got = s; return nil }
	osc52WriteAll = func(string) error { t.Fatal("osc52 should not be used"); return nil }

	res, err := WriteAll("/home/fred/notes.txt")
	if err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}
	if res.Method != MethodNative || got != "/home/fred/notes.txt" {
		t.Fatalf("WriteAll = %#v (got %q), want native", res, got)
	}
	if !strings.Contains(res.Describe("path"), "Copied path") {
		t.Fatalf("Describe = %q", res.Describe("path"))
	}
}

func TestWriteAll_FallsBackToOSC52(t *testing.T) {
	t.Cleanup(resetStubs())
	nativeWriteAll = func(string) error { return errFake("no display") }
	osc52WriteAll = func(string) error { return nil }

	res, err := WriteAll("x")
	if err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}
	if res.Method != MethodOSC52 {
		t.Fatalf("Method = %q, want %q", res.Method, MethodOSC52)
	}
}

func TestWriteAll_AllFail_TempFileCreated(t *testing.T) {
	t.Cleanup(resetStubs())
	nativeWriteAll = func(_ string) error { return errFake("native down") }
	osc52WriteAll = func(_ string) error { return errFake("osc52 down") }

	res, err := WriteAll("fallback content")
	if err != nil {
		t.Fatalf("WriteAll returned error: %v", err)
	}
	if res.Method != MethodFile || res.FilePath == "" {
		t.Fatalf("WriteAll = %#v, want file fallback", res)
	}
	t.Cleanup(func() { _ = os.Remove(res.FilePath) })

	data, err := os.ReadFile(res.FilePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "fallback content" {
		t.Errorf("content = %q, want %q", string(data), "fallback content")
	}
	if !strings.Contains(res.Describe("content"), res.FilePath) {
		t.Errorf("Describe = %q, want it to mention the file", res.Describe("content"))
	}
}

func TestWriteAll_AllFail_TempFileFails(t *testing.T) {
	t.Cleanup(resetStubs())
	nativeWriteAll = func(_ string) error { return errFake("native down") }
	osc52WriteAll = func(_ string) error { return errFake("osc52 down") }
	t.Setenv("TMPDIR", "/nonexistent-temp-dir-for-test")

	if _, err := WriteAll("should fail"); err == nil {
		t.Error("expected error when all backends fail including temp file")
	}
}

func TestWriteAllOSC52_Rejects(t *testing.T) {
	if err := writeAllOSC52(""); err == nil {
		t.Error("expected error for empty text")
	}
	if err := writeAllOSC52(strings.Repeat("x", osc52LimitBytes+1)); err == nil {
		t.Error("expected error for text exceeding OSC52 limit")
	}
}

func TestSave_WritesAndAvoidsOverwrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")

	first, err := Save(dir, "report.txt", []byte("one"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	second, err := Save(dir, "report.txt", []byte("two"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if first != filepath.Join(dir, "report.txt") {
		t.Fatalf("first = %q", first)
	}
	if second != filepath.Join(dir, "report (1).txt") {
		t.Fatalf("second = %q, want report (1).txt", second)
	}
	data, _ := os.ReadFile(first)
	if string(data) != "one" {
		t.Fatalf("first content = %q, want one", data)
	}
}

func TestSave_SanitisesName(t *testing.T) {
	dir := t.TempDir()
	got, err := Save(dir, "../../etc/passwd", []byte("x"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got != filepath.Join(dir, "passwd") {
		t.Fatalf("Save = %q, want it inside %q", got, dir)
	}

	got, err = Save(dir, "", []byte("x"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if filepath.Base(got) != "download" {
		t.Fatalf("Save = %q, want download", got)
	}
}
