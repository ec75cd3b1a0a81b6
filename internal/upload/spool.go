package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrTooLarge = errors.New("uploaded file is too large")
	ErrReleased = errors.New("upload batch already released")
)

// Spool writes uploaded reference images to uniquely named files under a
// single directory.
type Spool struct {
	basePath string
}

func NewSpool(basePath string) (*Spool, error) {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "leangen-uploads")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Spool{basePath: basePath}, nil
}

// Dir returns the directory spooled files are written to.
func (spool *Spool) Dir() string {
	return spool.basePath
}

// NewBatch starts a request-scoped set of spooled files. The caller must call
// Release on every exit path.
func (spool *Spool) NewBatch() *Batch {
	return &Batch{spool: spool}
}

// File is one spooled upload.
type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// Batch tracks the files spooled for one request.
type Batch struct {
	spool    *Spool
	mu       sync.Mutex
	files    []*File
	open     []io.Closer
	released bool
}

// Save copies r into a new spooled file. A file larger than limit bytes fails
// with ErrTooLarge and is removed by Release like any other; limit <= 0
// disables the check.
func (b *Batch) Save(name, contentType string, r io.Reader, limit int64) (*File, error) {
	path := filepath.Join(b.spool.basePath, uuid.New().String()+safeExt(name))

	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return nil, ErrReleased
	}
	f := &File{Path: path, Name: name, ContentType: contentType}
	// Tracked before the write so a partial file is still cleaned up.
	b.files = append(b.files, f)
	b.mu.Unlock()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(out, src)
	if err != nil {
		return nil, fmt.Errorf("failed to write upload file: %w", err)
	}
	if limit > 0 && n > limit {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", name, ErrTooLarge, limit)
	}
	f.Size = n

	log.Debug().Str("path", path).Str("name", name).Int64("size", n).Msg("Spooled upload")

	return f, nil
}

// Open opens a spooled file for reading. The handle is closed by Release.
func (b *Batch) Open(f *File) (*os.File, error) {
	rf, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload file: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		rf.Close()
		return nil, ErrReleased
	}
	b.open = append(b.open, rf)
	return rf, nil
}

// Files returns the spooled files in save order.
func (b *Batch) Files() []*File {
	b.mu.Lock()
	defer b.mu.Unlock()

	files := make([]*File, len(b.files))
	copy(files, b.files)
	return files
}

func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.files)
}

// Release closes every handle from Open and removes every spooled file.
// Failures are logged, never returned. Calling Release more than once is a no-op.
func (b *Batch) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.released = true

	for _, c := range b.open {
		c.Close()
	}
	for _, f := range b.files {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", f.Path).Msg("Failed to remove spooled upload")
			continue
		}
		log.Debug().Str("path", f.Path).Msg("Removed spooled upload")
	}
	b.open = nil
}

// safeExt keeps a short alphanumeric extension from the client filename.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
