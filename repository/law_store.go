package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lawchat-backend/models"
	"lawchat-backend/storage"
)

// LawStore persists laws together with their article embeddings
type LawStore interface {
	// Load returns the persisted law, models.ErrLawNotFound when absent and
	// models.ErrDataCorruption when the stored document is unusable
	Load(ctx context.Context, name string) (*models.Law, error)

	// Save replaces the persisted copy of law
	Save(ctx context.Context, law *models.Law) error
}

// DocumentStore keeps each law as one JSON document in object storage
type DocumentStore struct {
	store  storage.Storage
	prefix string
}

// NewDocumentStore creates a law store over object storage
func NewDocumentStore(store storage.Storage) *DocumentStore {
	return &DocumentStore{store: store, prefix: "laws/"}
}

func (s *DocumentStore) key(name string) string {
	return s.prefix + name + ".json"
}

// Load reads and validates a law document
func (s *DocumentStore) Load(ctx context.Context, name string) (*models.Law, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrBlankLawName
	}

	rc, err := s.store.Get(ctx, s.key(name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrLawNotFound, name)
		}
		return nil, fmt.Errorf("failed to read law document: %w", err)
	}
	defer rc.Close()

	var law models.Law
	if err := json.NewDecoder(rc).Decode(&law); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrDataCorruption, name, err)
	}
	if law.Name != name {
		return nil, fmt.Errorf("%w: document %s holds law %q", models.ErrDataCorruption, name, law.Name)
	}
	if err := law.Validate(); err != nil {
		return nil, err
	}
	return &law, nil
}

// Save writes a law document
func (s *DocumentStore) Save(ctx context.Context, law *models.Law) error {
	if err := law.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(law, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode law: %w", err)
	}
	if err := s.store.Put(ctx, s.key(law.Name), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write law document: %w", err)
	}
	return nil
}
