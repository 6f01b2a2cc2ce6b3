package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/schema"
)

// Store implements ports.DefinitionStore using the local filesystem.
// Each definition is a JSON file under BasePath/<kind>/<name>.json.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".crosswalk/definitions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".crosswalk", "definitions")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(kind, name string) string {
	return filepath.Join(s.BasePath, kind, name+".json")
}

// save writes a definition document atomically: temp file in the same
// directory, fsync, close, then rename over the destination.
func (s *Store) save(kind, name string, doc any) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}

	dir := filepath.Join(s.BasePath, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure %s directory: %w", kind, err)
	}

	destPath := s.path(kind, name)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+name+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when dest exists, so clear it first.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing %s for overwrite: %w", kind, err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to %s definition: %w", kind, err)
	}

	return nil
}

func (s *Store) load(kind, name string, doc any) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}

	data, err := os.ReadFile(s.path(kind, name))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ErrDefinitionNotFound
		}
		return fmt.Errorf("failed to read %s file: %w", kind, err)
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to unmarshal %s %q: %w", kind, name, err)
	}
	return nil
}

// SaveSchema persists a schema definition.
func (s *Store) SaveSchema(ctx context.Context, sc *schema.Schema) error {
	return s.save("schema", sc.Name, sc)
}

// LoadSchema retrieves a schema definition by name.
func (s *Store) LoadSchema(ctx context.Context, name string) (*schema.Schema, error) {
	var sc schema.Schema
	if err := s.load("schema", name, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// SaveCrosswalk persists a crosswalk definition.
func (s *Store) SaveCrosswalk(ctx context.Context, c *domain.Crosswalk) error {
	return s.save("crosswalk", c.Name, c)
}

// LoadCrosswalk retrieves a crosswalk definition by name.
func (s *Store) LoadCrosswalk(ctx context.Context, name string) (*domain.Crosswalk, error) {
	var c domain.Crosswalk
	if err := s.load("crosswalk", name, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveTransform persists a transform audit record.
func (s *Store) SaveTransform(ctx context.Context, t *domain.Transform) error {
	return s.save("transform", t.Name, t)
}

// LoadTransform retrieves a transform audit record by name.
func (s *Store) LoadTransform(ctx context.Context, name string) (*domain.Transform, error) {
	var t domain.Transform
	if err := s.load("transform", name, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the names of stored definitions of one kind.
func (s *Store) List(ctx context.Context, kind string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.BasePath, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s definitions: %w", kind, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	return names, nil
}
