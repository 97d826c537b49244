package monorepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mesh-intelligence/pkl/internal/manifest"
	"github.com/mesh-intelligence/pkl/pkg/types"
)

// Located is a package found inside a monorepo.
type Located struct {
	Location string
	Manifest *manifest.Manifest
}

// Locator finds packages by name or folder.
type Locator struct {
	tool *Tool
}

// NewLocator returns a Locator listing packages through tool.
func NewLocator(tool *Tool) *Locator {
	return &Locator{tool: tool}
}

// Locate finds the package whose declared name, or whose folder name,
// equals nameOrFolder. When nothing matches it falls back to the
// conventional <monorepo>/packages/<nameOrFolder> and reads the manifest
// there anyway.
func (l *Locator) Locate(ctx context.Context, monorepoPath, nameOrFolder string) (Located, error) {
	pkgs, err := l.tool.ListPackages(ctx, monorepoPath)
	if err != nil {
		if errors.Is(err, types.ErrListPackages) {
			return Located{}, err
		}
		return Located{}, fmt.Errorf("%w at %s: %w", types.ErrListPackages, monorepoPath, err)
	}

	location := filepath.Join(monorepoPath, "packages", nameOrFolder)
	if p, ok := match(pkgs, nameOrFolder); ok {
		location = p.Location
	} else {
		log.Debug().Str("package", nameOrFolder).Str("guess", location).Msg("no listed package matched, using conventional location")
	}

	m, err := manifest.Read(location)
	if err != nil {
		log.Debug().Err(err).Str("location", location).Msg("manifest unreadable")
		return Located{}, fmt.Errorf("%w for %s", types.ErrReadManifest, nameOrFolder)
	}
	return Located{Location: location, Manifest: m}, nil
}

// match returns the first package named want or living in a folder named want.
func match(pkgs []types.Package, want string) (types.Package, bool) {
	for _, p := range pkgs {
		if p.Name == want || filepath.Base(p.Location) == want {
			return p, true
		}
	}
	return types.Package{}, false
}
