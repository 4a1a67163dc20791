package audit

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/felixzheng98/cedarlink/internal/core"
)

// FileSinkConfig is the typed form of the file auditor's config map.
type FileSinkConfig struct {
	Path string `mapstructure:"path"`
}

// Build constructs an auditor from its config type and raw settings map.
func Build(sinkType string, raw map[string]any) (core.Auditor, error) {
	switch sinkType {
	case "", "noop":
		return NewNoopAuditor(), nil
	case "memory":
		return NewMemoryAuditor(), nil
	case "file":
		var cfg FileSinkConfig
		if err := mapstructure.Decode(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decoding file audit config: %w", err)
		}
		if cfg.Path == "" {
			return nil, fmt.Errorf("file audit sink requires 'path'")
		}
		return NewFileAuditor(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit sink type '%s'", sinkType)
	}
}
