package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem provides an in-memory implementation of FileSystem for testing.
// Paths are cleaned with filepath.Clean before use.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string]*mockFile
	dirs  map[string]bool

	// Optional errors for simulating failures
	StatError      error
	ReadFileError  error
	WriteFileError error
	RenameError    error
	RemoveError    error
	ReadDirError   error
	MkdirError     error

	// ReadFileErrors fails reads of specific paths only
	ReadFileErrors map[string]error

	// Writes counts successful WriteFile calls
	Writes int
}

type mockFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi mockFileInfo) Name() string       { return fi.name }
func (fi mockFileInfo) Size() int64        { return fi.size }
func (fi mockFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi mockFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	info mockFileInfo
}

func (e mockDirEntry) Name() string               { return e.info.name }
func (e mockDirEntry) IsDir() bool                { return e.info.IsDir() }
func (e mockDirEntry) Type() fs.FileMode          { return e.info.mode.Type() }
func (e mockDirEntry) Info() (fs.FileInfo, error) { return e.info, nil }

// NewMockFileSystem creates a new mock file system
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:          make(map[string]*mockFile),
		dirs:           make(map[string]bool),
		ReadFileErrors: make(map[string]error),
	}
}

// Stat implements FileSystem.Stat
func (m *MockFileSystem) Stat(name string) (fs.FileInfo, error) {
	if m.StatError != nil {
		return nil, m.StatError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	if file, exists := m.files[name]; exists {
		return mockFileInfo{
			name:    filepath.Base(name),
			size:    int64(len(file.content)),
			mode:    file.mode,
			modTime: file.modTime,
		}, nil
	}
	if m.dirs[name] {
		return mockFileInfo{name: filepath.Base(name), mode: fs.ModeDir | 0755}, nil
	}
	return nil, os.ErrNotExist
}

// ReadFile implements FileSystem.ReadFile
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadFileError != nil {
		return nil, m.ReadFileError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	if err, ok := m.ReadFileErrors[name]; ok {
		return nil, err
	}
	file, exists := m.files[name]
	if !exists {
		return nil, os.ErrNotExist
	}

	// Return a copy to prevent external modifications
	content := make([]byte, len(file.content))
	copy(content, file.content)
	return content, nil
}

// WriteFile implements FileSystem.WriteFile
func (m *MockFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if m.WriteFileError != nil {
		return m.WriteFileError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	content := make([]byte, len(data))
	copy(content, data)

	m.files[filepath.Clean(name)] = &mockFile{
		content: content,
		mode:    perm,
		modTime: time.Now(),
	}
	m.Writes++
	return nil
}

// Rename implements FileSystem.Rename
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	if m.RenameError != nil {
		return m.RenameError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	file, exists := m.files[oldpath]
	if !exists {
		return os.ErrNotExist
	}

	// Overwrites the target, like os.Rename
	m.files[newpath] = file
	delete(m.files, oldpath)
	return nil
}

// Remove implements FileSystem.Remove
func (m *MockFileSystem) Remove(name string) error {
	if m.RemoveError != nil {
		return m.RemoveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if _, exists := m.files[name]; !exists {
		return os.ErrNotExist
	}
	delete(m.files, name)
	return nil
}

// ReadDir implements FileSystem.ReadDir.
// Only files directly inside the directory are listed, sorted by name.
func (m *MockFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	if m.ReadDirError != nil {
		return nil, m.ReadDirError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	dir := filepath.Clean(name)
	var entries []fs.DirEntry
	for path, file := range m.files {
		if filepath.Dir(path) != dir {
			continue
		}
		entries = append(entries, mockDirEntry{info: mockFileInfo{
			name:    filepath.Base(path),
			size:    int64(len(file.content)),
			mode:    file.mode,
			modTime: file.modTime,
		}})
	}
	if len(entries) == 0 && !m.dirs[dir] {
		return nil, os.ErrNotExist
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// MkdirAll implements FileSystem.MkdirAll
func (m *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if m.MkdirError != nil {
		return m.MkdirError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for dir := filepath.Clean(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return nil
}

// FileExists is a helper method for testing
func (m *MockFileSystem) FileExists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[filepath.Clean(name)]
	return exists
}

// GetFileContent is a helper method for testing
func (m *MockFileSystem) GetFileContent(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, exists := m.files[filepath.Clean(name)]
	if !exists {
		return nil, false
	}
	content := make([]byte, len(file.content))
	copy(content, file.content)
	return content, true
}

// Files returns the paths of all files, sorted
func (m *MockFileSystem) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
