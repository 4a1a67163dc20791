package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/felixzheng98/cedarlink/internal/config"
	"github.com/felixzheng98/cedarlink/internal/logging"
)

// PolicyFileExt is the extension policy source files must carry.
const PolicyFileExt = ".cedar"

// FilesystemFetcher loads *.cedar files from a local directory tree.
type FilesystemFetcher struct {
	cfg config.FilesystemSourceConfig
}

var _ Fetcher = (*FilesystemFetcher)(nil)

func NewFilesystemFetcher(cfg config.FilesystemSourceConfig) (*FilesystemFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filesystem source config: %w", err)
	}
	return &FilesystemFetcher{cfg: cfg}, nil
}

func (f *FilesystemFetcher) Fetch(_ context.Context, logger logging.InternalLogger) ([]Document, error) {
	logger.Info("Scanning %s for policy files...", f.cfg.Path)

	var paths []string
	err := filepath.WalkDir(f.cfg.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, PolicyFileExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning policy directory '%s': %w", f.cfg.Path, err)
	}
	if len(paths) == 0 {
		logger.Warn("No policy files found in %s", f.cfg.Path)
		return nil, nil
	}

	// load in a stable order so ids assign deterministically
	slices.Sort(paths)

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading policy file '%s': %w", path, err)
		}
		docs = append(docs, Document{
			ID:  DocumentID(f.cfg.Path, path),
			Src: string(data),
		})
	}

	logger.Info("Loaded %d policy files", len(docs))
	return docs, nil
}

// DocumentID derives a stable id from a policy file path: the path relative
// to the source root, slash-separated, without the extension.
func DocumentID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, PolicyFileExt)
}
