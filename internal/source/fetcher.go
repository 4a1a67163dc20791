package source

import (
	"context"

	"github.com/felixzheng98/cedarlink/internal/logging"
)

// Document is one policy text retrieved from an external source. Whether it
// is a static policy or a template is decided later by parsing.
type Document struct {
	// ID is derived from the file path, unique within the source.
	ID string

	// Src is the raw policy text.
	Src string
}

// Fetcher retrieves the current policy documents from an external source.
type Fetcher interface {
	Fetch(ctx context.Context, log logging.InternalLogger) ([]Document, error)
}
