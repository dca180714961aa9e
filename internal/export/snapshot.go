package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/eprotocol/internal/model"
)

// SnapshotVersion is the format version written by NewSnapshot.
const SnapshotVersion = "1.0"

// ErrInvalidSnapshot is returned for documents without a recipes array.
var ErrInvalidSnapshot = errors.New("invalid recipe snapshot")

type Metadata struct {
	ClientInfo string `json:"clientInfo"`
	AppVersion string `json:"appVersion"`
}

// Snapshot is the recipe book interchange document.
type Snapshot struct {
	Version    string         `json:"version"`
	ExportDate time.Time      `json:"exportDate"`
	Recipes    []model.Recipe `json:"recipes"`
	Metadata   Metadata       `json:"metadata"`
}

func NewSnapshot(recipes []model.Recipe, meta Metadata, now time.Time) Snapshot {
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return Snapshot{
		Version:    SnapshotVersion,
		ExportDate: now.UTC(),
		Recipes:    recipes,
		Metadata:   meta,
	}
}

// Validate rejects a snapshot whose recipe list is absent.
func (s Snapshot) Validate() error {
	if s.Recipes == nil {
		return fmt.Errorf("%w: missing recipes", ErrInvalidSnapshot)
	}
	return nil
}

func WriteSnapshot(s Snapshot, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

// ParseSnapshot decodes a snapshot document. The recipes field must be
// present and be an array.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	raw, ok := fields["recipes"]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: missing recipes", ErrInvalidSnapshot)
	}
	if raw = bytes.TrimSpace(raw); len(raw) == 0 || raw[0] != '[' {
		return Snapshot{}, fmt.Errorf("%w: recipes is not an array", ErrInvalidSnapshot)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s.Recipes == nil {
		s.Recipes = []model.Recipe{}
	}
	return s, nil
}

func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return ParseSnapshot(data)
}
