package nanosnap

import (
	"log/slog"

	"github.com/arthur-debert/nanosnap/nanosnap/store"
)

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger for session and layout messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLayout replaces the layout derived from the config.
// Layout options given with WithLayoutOptions are ignored then.
func WithLayout(layout store.Layout) Option {
	return func(s *Session) {
		s.layout = layout
	}
}

// WithLayoutOptions passes options to the layout built from the config,
// e.g. store.WithFileSystem for tests
func WithLayoutOptions(opts ...store.Option) Option {
	return func(s *Session) {
		s.layoutOpts = append(s.layoutOpts, opts...)
	}
}

// SnapshotOption configures a single capture
type SnapshotOption func(*snapshotOptions)

type snapshotOptions struct {
	name   string
	asJSON bool
}

// WithName labels the capture explicitly. The label replaces the occurrence
// counter as the key discriminator and leaves the counter untouched.
func WithName(label string) SnapshotOption {
	return func(o *snapshotOptions) {
		o.name = label
	}
}

// AsJSON stores elements as a JSON-safe DOM tree instead of HTML markup
func AsJSON() SnapshotOption {
	return func(o *snapshotOptions) {
		o.asJSON = true
	}
}

func newSnapshotOptions(opts []SnapshotOption) snapshotOptions {
	var o snapshotOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
