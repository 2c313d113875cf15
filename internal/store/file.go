package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dodobird181/sambot2/internal/models"
)

// FileStore persists each conversation as a JSON file named by its
// UUID. Records are read and written wholesale on every turn.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating the
// directory if necessary.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./data/conversations"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path returns the record path for a conversation id.
func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

// Save writes the conversation to its record file, replacing any
// previous contents. The write goes through a temp file and rename so
// a crash mid-write cannot leave a truncated record behind.
func (s *FileStore) Save(ctx context.Context, c *models.Conversation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", c.ID, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+c.ID.String()+"-*")
	if err != nil {
		return fmt.Errorf("write conversation %s: %w", c.ID, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write conversation %s: %w", c.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write conversation %s: %w", c.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(c.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write conversation %s: %w", c.ID, err)
	}
	return nil
}

// Load reads a conversation back from its record file. A missing
// record returns (nil, nil); a record that cannot be decoded returns
// an error wrapping ErrDecode.
func (s *FileStore) Load(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read conversation %s: %w", id, err)
	}
	var c models.Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, id, err)
	}
	if len(c.Messages) == 0 || c.Messages[0].Role != models.RoleSystem {
		return nil, fmt.Errorf("%w: %s: system message missing from index 0", ErrDecode, id)
	}
	return &c, nil
}

// Delete removes a conversation record. Missing records are ignored.
func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

// Ping checks that the data directory is still writable.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *FileStore) Close() {}
