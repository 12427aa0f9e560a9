package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the workspace and buildconf packages
// that is not an environment fault wraps exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnexpectedShape = errors.New("unexpected shape")
	ErrInvalidName     = errors.New("invalid name")
)

// Workspace errors.
var (
	ErrWorkspaceNotFound = fmt.Errorf("workspace path %w", ErrNotFound)
	ErrNestedWorkspace   = fmt.Errorf("nested workspace: %w", ErrConflict)
	ErrNotMapping        = fmt.Errorf("document is not a mapping: %w", ErrUnexpectedShape)
)

// Library errors.
var (
	ErrMalformedSpec      = fmt.Errorf("identifier must be <family>/<name>: %w", ErrConflict)
	ErrFamilyNotFound     = fmt.Errorf("family %w", ErrNotFound)
	ErrSpecNotFound       = fmt.Errorf("identifier %w", ErrNotFound)
	ErrLibraryFileMissing = fmt.Errorf("library file %w", ErrNotFound)
)
