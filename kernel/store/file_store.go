package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/craftops/panelsim/kernel/model"
	"github.com/sirupsen/logrus"
)

// FileStore is a StateStore that mirrors every mutation to a JSON file, so a
// dev server keeps its simulated universe across restarts. Reads are served
// from the embedded MemoryStore; the file is only a write-through copy.
type FileStore struct {
	*MemoryStore
	path string
}

// NewFileStore loads the universe from path when the file exists, otherwise
// starts from the default scenario.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{MemoryStore: NewMemoryStore(), path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var u model.Universe
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	s.MemoryStore.Replace(&u)
	return s, nil
}

func (s *FileStore) Replace(u *model.Universe) {
	s.MemoryStore.Replace(u)
	s.save()
}

func (s *FileStore) Patch(p *model.UniversePatch) {
	s.MemoryStore.Patch(p)
	s.save()
}

func (s *FileStore) Update(fn func(u *model.Universe) error) error {
	err := s.MemoryStore.Update(fn)
	s.save()
	return err
}

func (s *FileStore) Reset() {
	s.MemoryStore.Reset()
	s.save()
}

func (s *FileStore) SetParameter(key, value string) {
	s.MemoryStore.SetParameter(key, value)
	s.save()
}

func (s *FileStore) SetGlobalLatency(ms *int64) {
	s.MemoryStore.SetGlobalLatency(ms)
	s.save()
}

func (s *FileStore) SetFaultPolicy(op string, p model.FailurePolicy) {
	s.MemoryStore.SetFaultPolicy(op, p)
	s.save()
}

func (s *FileStore) ClearFaultPolicy(op string) {
	s.MemoryStore.ClearFaultPolicy(op)
	s.save()
}

func (s *FileStore) ClearAllFaults() {
	s.MemoryStore.ClearAllFaults()
	s.save()
}

func (s *FileStore) ConsumeFailNext(op string) (model.FailurePolicy, bool) {
	p, ok := s.MemoryStore.ConsumeFailNext(op)
	if ok {
		s.save()
	}
	return p, ok
}

func (s *FileStore) save() {
	snapshot := s.MemoryStore.Snapshot()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		logrus.WithError(err).Warn("failed to marshal state file")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		logrus.WithError(err).Warn("failed to create state directory")
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		logrus.WithError(err).Warn("failed to write state file")
	}
}
