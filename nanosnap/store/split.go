package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/nanosnap/types"
)

const (
	// IndexFile is the split layout index inside the snapshot directory
	IndexFile = "index.json"

	shardExt = ".json"
)

// Index lists the shard files of a split layout.
// Entries are file names relative to the snapshot directory, so an index
// stays valid when the directory is moved or read from another working
// directory. Entries holding a directory prefix, as older writers produced,
// are still resolved on load.
type Index struct {
	Version   string   `json:"__version"`
	Snapshots []string `json:"snapshots"`
}

// ShardFileName returns the shard file name for a joined record key
func ShardFileName(key string) string {
	return types.SanitizeKey(key) + shardExt
}

// uniqueShardName returns the shard file name for key that is not yet taken
func uniqueShardName(key string, taken map[string]string) string {
	base := types.SanitizeKey(key)
	name := base + shardExt
	for n := 2; ; n++ {
		if _, ok := taken[name]; !ok {
			return name
		}
		name = fmt.Sprintf("%s_%d%s", base, n, shardExt)
	}
}

// Split persists an index plus one shard file per record:
//
//	index.json                {"__version": "1.2.0", "snapshots": ["TestLoginform1.json"]}
//	TestLoginform1.json       {"TestLogin form 1": {...}}
//
// Every shard holds exactly one record. Keys whose file names collide get a
// numeric suffix in key order: "a b 1" and "ab 1" become ab1.json and ab1_2.json.
type Split struct {
	base
}

// NewSplit creates a split layout rooted at dir
func NewSplit(dir string, opts ...Option) *Split {
	return &Split{base: newBase(dir, opts)}
}

// Name implements Layout.Name
func (s *Split) Name() string {
	return "split"
}

// Path implements Layout.Path
func (s *Split) Path() string {
	return filepath.Join(s.dir, IndexFile)
}

// Load implements Layout.Load. Shards that cannot be read are skipped and
// reported through a *PartialLoadError next to the records that did load.
func (s *Split) Load(ctx context.Context) (*State, error) {
	path := s.Path()

	ok, err := s.exists(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !ok {
		return NewState(), nil
	}

	var (
		state   *State
		partial *PartialLoadError
	)
	err = withLock(ctx, s.lockFor(path), func() error {
		index, err := s.readIndex(path)
		if err != nil {
			return err
		}

		state = NewState()
		if index == nil {
			return nil
		}
		state.Version = index.Version

		for _, entry := range index.Snapshots {
			records, err := s.readShard(entry)
			if err != nil {
				s.logger.Warn("skipping snapshot shard", "shard", entry, "error", err)
				if partial == nil {
					partial = &PartialLoadError{}
				}
				partial.Skipped = append(partial.Skipped, entry)
				partial.Errs = append(partial.Errs, err)
				continue
			}
			// later shards win on key collision
			for k, v := range records {
				state.Records[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if partial != nil {
		return state, partial
	}
	return state, nil
}

// Save implements Layout.Save. Shards are written before the index so a
// reader never sees an index entry without its file.
func (s *Split) Save(ctx context.Context, state *State) error {
	var names []string
	shards := make(map[string]string)
	for _, key := range state.Keys() {
		name := uniqueShardName(key, shards)
		shards[name] = key
		names = append(names, name)
	}

	index := Index{Snapshots: names}
	if state != nil {
		index.Version = state.Version
	}
	if index.Snapshots == nil {
		index.Snapshots = []string{}
	}
	indexData, err := marshalJSON(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := s.ensureDir(); err != nil {
		return err
	}

	path := s.Path()
	return withLock(ctx, s.lockFor(path), func() error {
		for _, name := range names {
			key := shards[name]
			data, err := marshalJSON(map[string]any{key: state.Records[key]})
			if err != nil {
				return fmt.Errorf("failed to marshal shard %s: %w", name, err)
			}
			if err := s.writeAtomic(filepath.Join(s.dir, name), data); err != nil {
				return fmt.Errorf("shard %s: %w", name, err)
			}
		}
		return s.writeAtomic(path, indexData)
	})
}

// OrphanedShards returns shard files in the snapshot directory that the
// current index does not reference, sorted by name
func (s *Split) OrphanedShards(ctx context.Context) ([]string, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// No snapshot directory, so no orphaned shards
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	referenced := make(map[string]bool)
	path := s.Path()
	ok, err := s.exists(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if ok {
		err = withLock(ctx, s.lockFor(path), func() error {
			index, err := s.readIndex(path)
			if err != nil || index == nil {
				return err
			}
			for _, entry := range index.Snapshots {
				referenced[filepath.Base(entry)] = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	orphaned := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Skip hidden files, the index and our temp/lock files
		if strings.HasPrefix(name, ".") || name == IndexFile || !strings.HasSuffix(name, shardExt) {
			continue
		}
		if !referenced[name] {
			orphaned = append(orphaned, name)
		}
	}
	sort.Strings(orphaned)
	return orphaned, nil
}

// RemoveShard deletes a shard file from the snapshot directory
func (s *Split) RemoveShard(name string) error {
	if name != filepath.Base(name) || !strings.HasSuffix(name, shardExt) || name == IndexFile {
		return fmt.Errorf("not a shard file: %q", name)
	}
	if err := s.fs.Remove(filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to remove shard %s: %w", name, err)
	}
	return nil
}

// readIndex reads and decodes the index; a missing or empty index yields nil
func (s *Split) readIndex(path string) (*Index, error) {
	data, found, err := s.readExisting(path)
	if err != nil || !found {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrParse, err)
	}
	return &index, nil
}

// readShard reads one shard referenced by the index
func (s *Split) readShard(entry string) (map[string]any, error) {
	data, err := s.readShardFile(entry)
	if err != nil {
		return nil, err
	}

	var records map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return records, nil
}

// readShardFile resolves relative entries against the snapshot directory
// first, then as written. Older indexes hold paths relative to the
// working directory.
func (s *Split) readShardFile(entry string) ([]byte, error) {
	candidates := []string{entry}
	if !filepath.IsAbs(entry) {
		candidates = []string{filepath.Join(s.dir, entry), entry}
		if filepath.Join(s.dir, entry) == filepath.Clean(entry) {
			candidates = candidates[:1]
		}
	}

	var lastErr error
	for _, candidate := range candidates {
		data, found, err := s.readExisting(candidate)
		if err != nil {
			return nil, err
		}
		if found {
			return data, nil
		}
		lastErr = fmt.Errorf("%s: %w", candidate, fs.ErrNotExist)
	}
	return nil, lastErr
}
