package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestSpool(t *testing.T) *Spool {
	t.Helper()
	spool, err := NewSpool(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	return spool
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestSaveAndRelease(t *testing.T) {
	spool := newTestSpool(t)
	batch := spool.NewBatch()

	a, err := batch.Save("cube.png", "image/png", strings.NewReader("aaa"), 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := batch.Save("sphere.JPG", "image/jpeg", strings.NewReader("bbbb"), 0)
	if err != nil {
		t.Fatal(err)
	}

	if a.Path == b.Path {
		t.Fatal("spooled files share a path")
	}
	if filepath.Ext(a.Path) != ".png" || filepath.Ext(b.Path) != ".jpg" {
		t.Errorf("paths = %s, %s", a.Path, b.Path)
	}
	if a.Size != 3 || b.Size != 4 {
		t.Errorf("sizes = %d, %d", a.Size, b.Size)
	}

	files := batch.Files()
	if len(files) != 2 || files[0].Name != "cube.png" || files[1].Name != "sphere.JPG" {
		t.Errorf("Files() = %+v", files)
	}

	rf, err := batch.Open(a)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rf)
	if string(data) != "aaa" {
		t.Errorf("data = %q", data)
	}

	if n := dirEntries(t, spool.Dir()); n != 2 {
		t.Fatalf("entries before release = %d, want 2", n)
	}
	batch.Release()
	batch.Release()
	if n := dirEntries(t, spool.Dir()); n != 0 {
		t.Errorf("entries after release = %d, want 0", n)
	}
}

func TestSaveTooLarge(t *testing.T) {
	spool := newTestSpool(t)
	batch := spool.NewBatch()
	defer batch.Release()

	_, err := batch.Save("big.png", "image/png", strings.NewReader("0123456789"), 4)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}

	batch.Release()
	if n := dirEntries(t, spool.Dir()); n != 0 {
		t.Errorf("entries after release = %d, want 0", n)
	}
}

func TestSaveAfterRelease(t *testing.T) {
	spool := newTestSpool(t)
	batch := spool.NewBatch()
	batch.Release()

	if _, err := batch.Save("x.png", "image/png", strings.NewReader("x"), 0); !errors.Is(err, ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
}

func TestSafeExt(t *testing.T) {
	tests := map[string]string{
		"cube.png":         ".png",
		"photo.JPEG":       ".jpeg",
		"noext":            "",
		"../../etc/passwd": "",
		"weird.p/ng":       "",
		"x.tar.gz":         ".gz",
		"evil.png;rm":      "",
	}
	for name, want := range tests {
		if got := safeExt(name); got != want {
			t.Errorf("safeExt(%q) = %q, want %q", name, got, want)
		}
	}
}
