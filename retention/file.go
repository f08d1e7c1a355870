package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps retained slots in a file so that they survive a restart of
// the simulator process. Every access goes to the file.
type FileStore struct {
	lock  sync.Mutex
	path  string
	codec Codec
}

// NewFileStore creates a FileStore backed by the file at path, encoded as
// JSON.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, codec: JSONCodec{}}
}

// Path returns the file that backs the store.
func (s *FileStore) Path() string {
	return s.path
}

// Read returns the value held by the slot.
func (s *FileStore) Read(slot string) (int64, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	slots, err := s.load()
	if err != nil {
		return 0, false, err
	}

	v, ok := slots[slot]

	return v, ok, nil
}

// Write stores a value into the slot.
func (s *FileStore) Write(slot string, value int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	slots, err := s.load()
	if err != nil {
		return err
	}

	slots[slot] = value

	return s.save(slots)
}

// Erase removes the file.
func (s *FileStore) Erase() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("retention: erasing %s: %w", s.path, err)
	}

	return nil
}

// Close does nothing. The file is closed after every access.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (map[string]int64, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]int64), nil
	}

	if err != nil {
		return nil, fmt.Errorf("retention: opening %s: %w", s.path, err)
	}
	defer f.Close()

	slots, err := s.codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("retention: decoding %s: %w", s.path, err)
	}

	return slots, nil
}

// save writes to a temporary file first so that a crash never leaves a
// half-written file behind.
func (s *FileStore) save(slots map[string]int64) error {
	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("retention: writing %s: %w", s.path, err)
	}

	err = s.codec.Encode(tmp, slots)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("retention: encoding %s: %w", s.path, err)
	}

	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("retention: writing %s: %w", s.path, err)
	}

	err = os.Rename(tmp.Name(), s.path)
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("retention: writing %s: %w", s.path, err)
	}

	return nil
}
