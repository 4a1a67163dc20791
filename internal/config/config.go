package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the cedarlink service configuration.
type Config struct {
	// Policies are inline policy definitions registered at startup.
	Policies []PolicyEntry `yaml:"policies"`

	// Links are template links established at startup.
	Links []LinkEntry `yaml:"links"`

	// Source optionally points at an external policy source (filesystem
	// directory or GitHub repository) that is synced into the store.
	Source *PolicySource `yaml:"source"`

	Audit AuditConfig `yaml:"audit"`
	Auth  AuthConfig  `yaml:"auth"`
}

// PolicyEntry is one configured policy or template.
type PolicyEntry struct {
	// ID must be unique across all configured policies.
	ID string `yaml:"id"`

	// Template marks the entry as a template (parsed in template mode).
	Template bool `yaml:"template"`

	// Src is the inline policy source text. Exactly one of Src and File
	// must be set.
	Src string `yaml:"src"`

	// File is a path to a file holding the policy source text.
	File string `yaml:"file"`
}

// LinkEntry links a configured template with concrete entity UIDs.
type LinkEntry struct {
	// ID of the resulting linked policy. Generated when empty.
	ID string `yaml:"id"`

	// Template is the id of the template entry to link.
	Template string `yaml:"template"`

	// Principal and Resource are entity UIDs in textual form,
	// e.g. App::User::"alice". Leave empty for slots the template
	// does not declare.
	Principal string `yaml:"principal"`
	Resource  string `yaml:"resource"`
}

// PolicySourceSync controls how often an external source is re-fetched.
type PolicySourceSync struct {
	Interval time.Duration `yaml:"interval"`
}

// FilesystemSourceConfig loads policies from *.cedar files in a directory.
type FilesystemSourceConfig struct {
	// Path is the directory to scan.
	Path string `yaml:"path"`
}

func (c *FilesystemSourceConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// GitHubSourceConfig loads policies from *.cedar files in a GitHub repo.
type GitHubSourceConfig struct {
	// AppID is the GitHub App ID.
	AppID int64 `yaml:"app_id"`

	// InstallationID is the GitHub App installation ID.
	InstallationID int64 `yaml:"installation_id"`

	// ServerURL is the GitHub Enterprise server URL.
	// For GitHub.com, this can be left empty.
	ServerURL string `yaml:"server"`

	// PrivateKey is the GitHub App private key in PEM format.
	PrivateKey string `yaml:"private_key"`

	// Owner of the GitHub repository.
	Owner string `yaml:"owner"`

	// Repo is the name of the GitHub repository.
	Repo string `yaml:"repo"`

	// Path is the directory path within the repository to load policies
	// from, for example "policies/".
	Path string `yaml:"path"`

	// Ref is the git reference to use (e.g. a branch).
	Ref string `yaml:"ref"`
}

func (c *GitHubSourceConfig) Validate() error {
	if c.AppID == 0 {
		return fmt.Errorf("app_id is required")
	}
	if c.InstallationID == 0 {
		return fmt.Errorf("installation_id is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private_key is required")
	}
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if c.Ref == "" {
		return fmt.Errorf("ref is required")
	}
	return nil
}

// PolicySource selects where external policies are loaded from.
type PolicySource struct {
	Filesystem *FilesystemSourceConfig `yaml:"filesystem,omitempty"`
	GitHub     *GitHubSourceConfig     `yaml:"github,omitempty"`

	Sync PolicySourceSync `yaml:"sync"`
}

func (s *PolicySource) Validate() error {
	switch {
	case s.Filesystem != nil && s.GitHub != nil:
		return fmt.Errorf("configure either filesystem or github policy source, not both")
	case s.Filesystem != nil:
		if err := s.Filesystem.Validate(); err != nil {
			return fmt.Errorf("validating filesystem policy source: %w", err)
		}
	case s.GitHub != nil:
		if err := s.GitHub.Validate(); err != nil {
			return fmt.Errorf("validating GitHub policy source: %w", err)
		}
	default:
		return fmt.Errorf("no valid policy source configured")
	}
	return nil
}

// AuditConfig selects the audit sink. Type-specific settings go into
// Config and are decoded by the audit package.
type AuditConfig struct {
	Enabled bool           `yaml:"enabled"`
	Type    string         `yaml:"type"` // e.g. "file", "memory"
	Config  map[string]any `yaml:"config"`
}

// AuthConfig holds the admin API auth settings.
type AuthConfig struct {
	// SigningKey verifies admin bearer tokens (HMAC). Admin routes are
	// disabled when empty.
	SigningKey string `yaml:"signing_key"`
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file '%s': %w", path, err)
	}

	if cfg.Source != nil {
		if err := cfg.Source.Validate(); err != nil {
			return nil, err
		}
	}
	for i, entry := range cfg.Policies {
		if entry.ID == "" {
			return nil, fmt.Errorf("policy entry #%d missing id", i)
		}
		if (entry.Src == "") == (entry.File == "") {
			return nil, fmt.Errorf("policy '%s' must set exactly one of src and file", entry.ID)
		}
	}
	for i, ln := range cfg.Links {
		if ln.Template == "" {
			return nil, fmt.Errorf("link entry #%d missing template id", i)
		}
	}
	return &cfg, nil
}

// ResolveSource returns the entry's policy text, reading File if needed.
func (e PolicyEntry) ResolveSource() (string, error) {
	if e.Src != "" {
		return e.Src, nil
	}
	data, err := os.ReadFile(e.File)
	if err != nil {
		return "", fmt.Errorf("reading policy file '%s': %w", e.File, err)
	}
	return string(data), nil
}
