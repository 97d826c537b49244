package types

import "errors"

// Configuration errors.
var (
	ErrUnknownMonorepo       = errors.New("unknown monorepo name")
	ErrUnknownPackageManager = errors.New("unknown package manager")
)

// Locate errors.
var (
	ErrListPackages = errors.New("unable to list packages")
	ErrReadManifest = errors.New("unable to read manifest")
)

// Tool failures. The captured stderr travels in StageError.Output.
var (
	ErrPackFailed    = errors.New("pack failed")
	ErrInstallFailed = errors.New("install failed")
)
