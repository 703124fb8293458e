package types

import (
	"fmt"
	"strings"
)

// Format selects how snapshots are persisted
type Format string

const (
	// FormatDefault stores every snapshot in one generated document (snapshots.js)
	FormatDefault Format = ""

	// FormatJS is an explicit alias for FormatDefault
	FormatJS Format = "js"

	// FormatJSON stores an index.json plus one shard file per snapshot
	FormatJSON Format = "json"
)

// ParseFormat parses a format name as used in configuration files and flags
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "js", "default":
		return FormatDefault, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format: %s", s)
	}
}

// IsSplit reports whether the format uses the index + shard layout
func (f Format) IsSplit() bool {
	return f == FormatJSON
}

// String returns the string representation of the Format
func (f Format) String() string {
	if f.IsSplit() {
		return "json"
	}
	return "js"
}

// Config defines the snapshot session configuration
type Config struct {
	// SnapshotPath is the directory holding the snapshot document or index
	SnapshotPath string `mapstructure:"dir" json:"dir" yaml:"dir"`

	// Format selects monolithic ("" or "js") or split ("json") persistence
	Format Format `mapstructure:"format" json:"format" yaml:"format"`

	// Version is stamped on the persisted snapshots.
	// Empty means the version of this build.
	Version string `mapstructure:"version" json:"version,omitempty" yaml:"version,omitempty"`
}

// Validate checks the configuration for obvious mistakes
func (c Config) Validate() error {
	if strings.TrimSpace(c.SnapshotPath) == "" {
		return fmt.Errorf("snapshot path is required")
	}
	if _, err := ParseFormat(string(c.Format)); err != nil {
		return err
	}
	return nil
}
