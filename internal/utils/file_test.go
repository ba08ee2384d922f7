package utils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":        "jpg",
		"dir/archive.webp": "webp",
		"noext":            "",
	}
	for in, want := range tests {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.png", "b.jpeg", "c.WEBP", "d.tif"} {
		if !IsImageFile(name) {
			t.Errorf("expected %s to be an image file", name)
		}
	}
	for _, name := range []string{"notes.txt", "settings.yaml", "font.ttf"} {
		if IsImageFile(name) {
			t.Errorf("expected %s not to be an image file", name)
		}
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("/in/holiday.jpg", "/out", "kromaflow-", "-square", "")
	want := filepath.Join("/out", "kromaflow-holiday-square.png")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = GenerateOutputFilename("cat.png", "out", "", "", "webp")
	if got != filepath.Join("out", "cat.webp") {
		t.Errorf("unexpected name %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(" a/b:c?.png. "); got != "a_b_c_.png" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}

func TestListImageFilesAndExists(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := EnsureDir(sub); err != nil {
		t.Fatal(err)
	}
	if !DirExists(sub) {
		t.Fatal("EnsureDir did not create the directory")
	}

	for _, name := range []string{"one.png", "sub/two.jpg", "readme.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	want := []string{filepath.Join(dir, "one.png"), filepath.Join(dir, "sub", "two.jpg")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("ListImageFiles = %v, want %v", files, want)
	}

	if !FileExists(want[0]) || FileExists(sub) || FileExists(filepath.Join(dir, "nope")) {
		t.Error("FileExists gave a wrong answer")
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:     "512 B",
		2048:    "2.0 KB",
		5 << 20: "5.0 MB",
	}
	for size, want := range tests {
		if got := FormatFileSize(size); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", size, got, want)
		}
	}
}
