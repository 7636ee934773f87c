package rounding

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// SchemaVersion tags every persisted workspace. A stored workspace with any
// other version is discarded on load.
const SchemaVersion = 1

// DefaultWorkspaceKey is the fixed storage key of the workspace.
const DefaultWorkspaceKey = "neuroicu-rounds-data"

var workspaceKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Workspace is the persisted form of the whole sheet collection.
type Workspace struct {
	Version int      `json:"version"`
	Sheets  []*Sheet `json:"sheets"`
}

// WorkspaceRepository persists the sheet collection as one versioned blob.
// Load returns ErrWorkspaceNotFound when nothing is stored under key and
// ErrSchemaVersion when the stored blob has a different version.
type WorkspaceRepository interface {
	Load(ctx context.Context, key string) ([]*Sheet, error)
	Save(ctx context.Context, key string, sheets []*Sheet) error
	Delete(ctx context.Context, key string) error
}

func validateKey(key string) error {
	if !workspaceKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid workspace key %q", key)
	}
	return nil
}

func encodeWorkspace(sheets []*Sheet) ([]byte, error) {
	data, err := json.Marshal(Workspace{Version: SchemaVersion, Sheets: sheets})
	if err != nil {
		return nil, fmt.Errorf("encode workspace: %w", err)
	}
	return data, nil
}

func decodeWorkspace(data []byte) ([]*Sheet, error) {
	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	if ws.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: stored %d, want %d", ErrSchemaVersion, ws.Version, SchemaVersion)
	}
	return ws.Sheets, nil
}
