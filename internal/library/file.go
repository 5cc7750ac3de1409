package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"tattoovision/internal/domain"
	"tattoovision/internal/storage"
)

// CollectionKey is the fixed namespace the file backend stores the whole
// collection under.
const CollectionKey = "tattooDesigns.json"

// FileStore keeps the collection as one JSON array. Every mutation rewrites
// the whole value; concurrent writers from other processes are last-writer-wins.
type FileStore struct {
	mu    sync.Mutex
	files *storage.FileStore
}

func NewFileStore(files *storage.FileStore) *FileStore {
	return &FileStore{files: files}
}

func (s *FileStore) Insert(ctx context.Context, design domain.TattooDesign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	designs, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range designs {
		if existing.ID == design.ID {
			return fmt.Errorf("library: duplicate design id %s", design.ID)
		}
	}
	return s.save(ctx, append(designs, design))
}

func (s *FileStore) List(ctx context.Context) ([]domain.TattooDesign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *FileStore) Get(ctx context.Context, id string) (domain.TattooDesign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	designs, err := s.load(ctx)
	if err != nil {
		return domain.TattooDesign{}, err
	}
	for _, d := range designs {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.TattooDesign{}, fmt.Errorf("%w: design %s", domain.ErrNotFound, id)
}

func (s *FileStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	designs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	kept := designs[:0]
	removed := false
	for _, d := range designs {
		if d.ID == id {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	if !removed {
		return false, nil
	}
	return true, s.save(ctx, kept)
}

// load treats a missing or blank file as an empty collection. Anything that
// does not decode as an array of designs is ErrCorrupt and is never
// overwritten by a mutation.
func (s *FileStore) load(ctx context.Context) ([]domain.TattooDesign, error) {
	data, err := s.files.Read(ctx, CollectionKey)
	if errors.Is(err, storage.ErrNotExist) {
		return []domain.TattooDesign{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.TattooDesign{}, nil
	}
	var designs []domain.TattooDesign
	if err := json.Unmarshal(data, &designs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if designs == nil {
		designs = []domain.TattooDesign{}
	}
	return designs, nil
}

func (s *FileStore) save(ctx context.Context, designs []domain.TattooDesign) error {
	data, err := json.Marshal(designs)
	if err != nil {
		return fmt.Errorf("library: encode collection: %w", err)
	}
	if _, err := s.files.Write(ctx, CollectionKey, data); err != nil {
		return err
	}
	return nil
}

var _ Store = (*FileStore)(nil)
