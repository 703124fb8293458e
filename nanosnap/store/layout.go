package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/arthur-debert/nanosnap/types"
)

var (
	// ErrParse is returned when a snapshot document or index cannot be decoded
	ErrParse = errors.New("snapshot: invalid document")
)

// PartialLoadError reports shard files that were skipped during a load.
// The state returned alongside it holds every record that did load.
type PartialLoadError struct {
	Skipped []string
	Errs    []error
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("snapshot: skipped %d shard(s): %s", len(e.Skipped), strings.Join(e.Skipped, ", "))
}

// Unwrap returns the per-shard errors
func (e *PartialLoadError) Unwrap() []error {
	return e.Errs
}

// Layout is a persistence strategy for snapshot states
type Layout interface {
	// Name identifies the layout in logs and errors
	Name() string

	// Path returns the document (monolithic) or index (split) path
	Path() string

	// Load reads the persisted state. A missing source is an empty state,
	// not an error.
	Load(ctx context.Context) (*State, error)

	// Save persists a finalized state, replacing what is on disk
	Save(ctx context.Context, state *State) error
}

// Option configures a layout
type Option func(*base)

// WithFileSystem sets a custom FileSystem implementation
func WithFileSystem(fs FileSystem) Option {
	return func(b *base) {
		b.fs = fs
	}
}

// WithFileLockFactory sets a custom FileLockFactory implementation
func WithFileLockFactory(factory FileLockFactory) Option {
	return func(b *base) {
		b.lockFactory = factory
	}
}

// WithLogger sets the logger used for load warnings
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// NewLayout creates the layout matching format, rooted at dir
func NewLayout(format types.Format, dir string, opts ...Option) Layout {
	if format.IsSplit() {
		return NewSplit(dir, opts...)
	}
	return NewMonolithic(dir, opts...)
}

// base carries what both layouts share: where they live and how they touch files
type base struct {
	dir         string
	fs          FileSystem
	lockFactory FileLockFactory
	logger      *slog.Logger
}

func newBase(dir string, opts []Option) base {
	b := base{dir: dir}
	for _, opt := range opts {
		opt(&b)
	}

	// Set defaults for dependencies not provided via options
	if b.fs == nil {
		b.fs = OSFileSystem{}
	}
	if b.lockFactory == nil {
		b.lockFactory = FlockFactory{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// lockFor returns the lock guarding path
func (b *base) lockFor(path string) FileLock {
	return b.lockFactory.New(path + ".lock")
}

// exists reports whether path exists
func (b *base) exists(path string) (bool, error) {
	_, err := b.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ensureDir creates the snapshot directory if it doesn't exist
func (b *base) ensureDir() error {
	if ok, err := b.exists(b.dir); err == nil && ok {
		return nil
	}
	if err := b.fs.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return nil
}

// writeAtomic writes to a temp file, then renames it over path
func (b *base) writeAtomic(path string, data []byte) error {
	tmpFile := path + ".tmp"
	if err := b.fs.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename temp file to actual file (atomic on most filesystems)
	if err := b.fs.Rename(tmpFile, path); err != nil {
		_ = b.fs.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// readExisting reads path, reporting false when it does not exist
func (b *base) readExisting(path string) ([]byte, bool, error) {
	data, err := b.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, true, nil
}

// marshalJSON encodes v indented by two spaces, leaving HTML characters
// unescaped so markup snapshots stay readable. The output ends in a newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
