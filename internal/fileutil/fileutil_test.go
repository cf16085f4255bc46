package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "hello world", 0o644)

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected private copy, got %o", info.Mode().Perm())
	}
}

func TestCopyFileVerifiedKeepsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "src.bin.bak")
	writeFile(t, src, "verified copy content", 0o640)

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "verified copy content" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %o, want 640", info.Mode().Perm())
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
	if err := CopyFileVerified(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestOverwriteFileKeepsInodeAndMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "smaller")
	dst := filepath.Join(dir, "image.png")
	link := filepath.Join(dir, "hardlink.png")
	writeFile(t, src, "small", 0o600)
	writeFile(t, dst, "original bigger content", 0o644)
	if err := os.Link(dst, link); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}

	if err := OverwriteFile(src, dst); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{dst, link} {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "small" {
			t.Fatalf("%s content = %q", filepath.Base(path), got)
		}
	}
	after, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(before, after) {
		t.Fatal("destination was replaced by a new file")
	}
	if after.Mode().Perm() != 0o644 {
		t.Fatalf("mode = %o, want 644", after.Mode().Perm())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("extra files written next to destination: %v", entries)
	}
}

func TestOverwriteFileThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "smaller")
	target := filepath.Join(dir, "target.png")
	symlink := filepath.Join(dir, "alias.png")
	writeFile(t, src, "small", 0o644)
	writeFile(t, target, "original bigger content", 0o644)
	if err := os.Symlink(target, symlink); err != nil {
		t.Fatal(err)
	}

	if err := OverwriteFile(src, symlink); err != nil {
		t.Fatal(err)
	}
	info, err := os.Lstat(symlink)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatal("symlink was replaced by a regular file")
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "small" {
		t.Fatalf("target content = %q", got)
	}
}

func TestOverwriteFileMissingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, src, "data", 0o644)
	if err := OverwriteFile(src, filepath.Join(dir, "gone")); err == nil {
		t.Fatal("expected error when destination is missing")
	}
	if _, err := os.Stat(filepath.Join(dir, "gone")); !os.IsNotExist(err) {
		t.Fatalf("destination created: %v", err)
	}
}

func TestSizeAndRemoveAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	writeFile(t, path, "12345", 0o644)

	if size, ok := Size(path); !ok || size != 5 {
		t.Fatalf("Size = %d, %v", size, ok)
	}
	if _, ok := Size(dir); ok {
		t.Fatal("directories have no size")
	}
	if err := RemoveAll(path, filepath.Join(dir, "missing"), ""); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, ok := Size(path); ok {
		t.Fatal("file should be removed")
	}
}
