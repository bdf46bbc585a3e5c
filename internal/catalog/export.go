package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"photo-culler/internal/logging"
)

// ManifestName is the file Export writes into the source directory.
const ManifestName = "culling.json"

// Manifest lists the culling decisions for one directory.
type Manifest struct {
	SourceDir  string    `json:"sourceDir"`
	Generation string    `json:"generation"`
	ExportedAt time.Time `json:"exportedAt"`
	Summary    Summary   `json:"summary"`
	Keep       []string  `json:"keep"`
	Delete     []string  `json:"delete"`
	Pending    []string  `json:"pending"`
}

// Export writes the decisions manifest into the source directory, replacing
// any previous manifest atomically. It returns the manifest and its path.
func (c *Catalog) Export(ctx context.Context) (*Manifest, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	snap := c.Snapshot()
	if snap.SourceDir == "" {
		return nil, "", ErrNotLoaded
	}

	manifest := &Manifest{
		SourceDir:  snap.SourceDir,
		Generation: snap.Generation,
		ExportedAt: time.Now().UTC(),
		Summary:    summarize(snap.Items),
		Keep:       []string{},
		Delete:     []string{},
		Pending:    []string{},
	}
	for _, item := range snap.Items {
		switch item.Status {
		case StatusKeep:
			manifest.Keep = append(manifest.Keep, item.Name)
		case StatusDelete:
			manifest.Delete = append(manifest.Delete, item.Name)
		default:
			manifest.Pending = append(manifest.Pending, item.Name)
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode manifest: %w", err)
	}

	path := filepath.Join(snap.SourceDir, ManifestName)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", path, err)
	}

	logging.Info("Exported culling manifest to %s (keep=%d delete=%d pending=%d)",
		path, len(manifest.Keep), len(manifest.Delete), len(manifest.Pending))

	return manifest, path, nil
}
