// Package pack turns a monorepo package into a distributable tarball.
package pack

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mesh-intelligence/pkl/internal/manifest"
	"github.com/mesh-intelligence/pkl/internal/monorepo"
)

// Result is the outcome of a pack. Failed is set when the monorepo tool did
// not report success or did not name the tarball it wrote; Stderr then
// carries its diagnostics.
type Result struct {
	Failed  bool
	Stdout  string
	Stderr  string
	Archive string
}

// Packer packs packages through the monorepo tool.
type Packer struct {
	tool *monorepo.Tool
}

// New returns a Packer.
func New(tool *monorepo.Tool) *Packer {
	return &Packer{tool: tool}
}

// Pack packs the package at location. The tarball is written by the
// package manager into location itself.
//
// Unversioned packages are packed with a placeholder version; their
// manifest is restored before Pack returns, on every path.
func (p *Packer) Pack(ctx context.Context, monorepoPath, location string) (Result, error) {
	m, err := manifest.Read(location)
	if err != nil {
		return Result{}, fmt.Errorf("reading manifest: %w", err)
	}

	var out monorepo.PackOutput
	err = manifest.WithPlaceholderVersion(location, func() error {
		var err error
		out, err = p.tool.PackScoped(ctx, monorepoPath, m.Name())
		return err
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Failed:  !monorepo.ScopedSucceeded(out.Stderr) || !validArchive(out.Archive),
		Stdout:  out.Stdout,
		Stderr:  out.Stderr,
		Archive: out.Archive,
	}
	log.Debug().Str("package", m.Name()).Str("archive", res.Archive).Bool("failed", res.Failed).Msg("packed")
	return res, nil
}

// validArchive reports whether name is a bare file name inside the package
// directory. Anything else would point Stage at the package itself or
// outside it.
func validArchive(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}
