package source

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/go-github/v80/github"

	"github.com/felixzheng98/cedarlink/internal/config"
	"github.com/felixzheng98/cedarlink/internal/ghapp"
	"github.com/felixzheng98/cedarlink/internal/logging"
)

// GitHubFetcher loads *.cedar files from a GitHub repository using
// GitHub App credentials.
type GitHubFetcher struct {
	cfg config.GitHubSourceConfig
}

var _ Fetcher = (*GitHubFetcher)(nil)

func NewGitHubFetcher(cfg config.GitHubSourceConfig) (*GitHubFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid GitHub source config: %w", err)
	}
	return &GitHubFetcher{cfg: cfg}, nil
}

func (f *GitHubFetcher) Fetch(ctx context.Context, logger logging.InternalLogger) ([]Document, error) {
	logger.Info("Starting GitHub source sync for repo %s/%s (ref: %s)", f.cfg.Owner, f.cfg.Repo, f.cfg.Ref)

	appClient, err := ghapp.NewClient(f.cfg.AppID, []byte(f.cfg.PrivateKey), f.cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("app auth failed: %w", err)
	}

	gh, err := ghapp.InstallationTokenClient(ctx, appClient, f.cfg.InstallationID)
	if err != nil {
		return nil, fmt.Errorf("installation auth failed: %w", err)
	}

	ref := f.cfg.Ref
	if ref == "" {
		ref = "main"
	}

	logger.Debug("Fetching tree for ref %s...", ref)
	tree, _, err := gh.Git.GetTree(ctx, f.cfg.Owner, f.cfg.Repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("get tree failed: %w", err)
	}

	var targetFiles []string
	for _, entry := range tree.Entries {
		path := entry.GetPath()

		if entry.GetType() != "blob" {
			continue
		}
		if f.cfg.Path != "" && !strings.HasPrefix(path, f.cfg.Path) {
			continue
		}
		if strings.HasSuffix(path, PolicyFileExt) {
			targetFiles = append(targetFiles, path)
		}
	}
	if len(targetFiles) == 0 {
		logger.Warn("No policy files found in %s @ %s", f.cfg.Path, ref)
		return nil, nil
	}

	// sort for deterministic ids and ordering
	slices.Sort(targetFiles)

	var (
		mu       sync.Mutex
		docs     = make([]Document, len(targetFiles))
		firstErr error
		wg       sync.WaitGroup
	)
	for i, path := range targetFiles {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			logger.Debug("Downloading %s...", path)
			content, _, _, err := gh.Repositories.GetContents(ctx, f.cfg.Owner, f.cfg.Repo, path,
				&github.RepositoryContentGetOptions{Ref: ref})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("downloading '%s': %w", path, err)
				}
				mu.Unlock()
				return
			}
			raw, err := content.GetContent()
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("decoding '%s': %w", path, err)
				}
				mu.Unlock()
				return
			}
			docs[i] = Document{
				ID:  DocumentID(f.cfg.Path, path),
				Src: raw,
			}
		}(i, path)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	logger.Info("Loaded %d policy files from GitHub", len(docs))
	return docs, nil
}
