// Package apperr defines the error conditions surfaced by the knowledge base.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingConfiguration means the repository owner or name is absent.
	// Fatal; raised before any network call.
	ErrMissingConfiguration = errors.New("knowledge base configuration is missing the repository owner or name")

	// ErrMissingTreeData means the tree listing response omitted the file listing.
	ErrMissingTreeData = errors.New("the git tree response did not include any file information")

	// ErrDraft means a directly addressed article is marked as draft and
	// must be reported as "not published" rather than a generic load failure.
	ErrDraft = errors.New("article is marked as draft")
)

// FetchError reports that a document could not be loaded from either the
// content host or the same-origin fallback.
type FetchError struct {
	Path string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to load markdown file at %s", e.Path)
}
