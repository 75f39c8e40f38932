package docutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()

	mustWrite(t, filepath.Join(dir, "a.md"), "alpha")
	mustWrite(t, filepath.Join(dir, "b.txt"), "beta")
	mustWrite(t, filepath.Join(dir, "c.pdf"), "gamma")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(dir, "sub", "d.MD"), "delta")

	files, err := FindFiles(dir, []string{".md", ".txt"})
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "archive.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("docs/chapter1.md")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("# Chapter 1")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	dest := filepath.Join(dir, "out")
	if err := ExtractZip(zipPath, dest); err != nil {
		t.Fatalf("ExtractZip: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "docs", "chapter1.md"))
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(data) != "# Chapter 1" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestExtractZipRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")

	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("nope")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	dest := filepath.Join(dir, "out")
	if err := ExtractZip(zipPath, dest); err != nil {
		t.Fatalf("ExtractZip: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err == nil {
		t.Fatal("traversal entry was extracted outside dest")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if !DirExists(dir) {
		t.Fatal("directory not created")
	}
	if DirExists(filepath.Join(dir, "missing")) {
		t.Fatal("DirExists reported missing directory")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
