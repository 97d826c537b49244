// Package monorepo drives the monorepo management tool (lerna) and finds
// packages inside a registered monorepo.
package monorepo

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mesh-intelligence/pkl/internal/pm"
	"github.com/mesh-intelligence/pkl/internal/runner"
	"github.com/mesh-intelligence/pkl/pkg/types"
)

// DefaultCommand is the monorepo tool invoked when none is configured.
const DefaultCommand = "lerna"

// successMarker appears on the last stderr line of a scoped command that
// ran successfully.
const successMarker = "success exec"

// PackOutput is the captured output of a scoped pack.
type PackOutput struct {
	Stdout  string
	Stderr  string
	Archive string
}

// Tool runs the monorepo tool through a package manager strategy.
type Tool struct {
	runner  runner.Runner
	pm      pm.PackageManager
	command string
}

// NewTool returns a Tool. An empty command selects DefaultCommand.
func NewTool(r runner.Runner, manager pm.PackageManager, command string) *Tool {
	if command == "" {
		command = DefaultCommand
	}
	return &Tool{runner: r, pm: manager, command: command}
}

// PackageManager returns the strategy the tool runs under.
func (t *Tool) PackageManager() pm.PackageManager { return t.pm }

// ResolveBinary returns the monorepo's own copy of the tool when it is a
// local dependency, otherwise the bare command for PATH lookup.
func (t *Tool) ResolveBinary(ctx context.Context, monorepoPath string) (string, error) {
	local, err := t.pm.HasLocal(ctx, t.runner, monorepoPath, t.command)
	if err != nil {
		return "", fmt.Errorf("detecting local %s: %w", t.command, err)
	}
	if local {
		bin := filepath.Join(monorepoPath, "node_modules", ".bin", t.command)
		log.Debug().Str("bin", bin).Msg("using local monorepo tool")
		return bin, nil
	}
	log.Debug().Str("bin", t.command).Msg("using global monorepo tool")
	return t.command, nil
}

// ListPackages returns the packages the tool reports for the monorepo.
// Output that is not a JSON package list yields ErrListPackages.
func (t *Tool) ListPackages(ctx context.Context, monorepoPath string) ([]types.Package, error) {
	bin, err := t.ResolveBinary(ctx, monorepoPath)
	if err != nil {
		return nil, err
	}
	res, err := t.runner.Run(ctx, monorepoPath, bin, "ls", "--json")
	if err != nil {
		return nil, err
	}

	var pkgs []types.Package
	if err := json.Unmarshal([]byte(res.Stdout), &pkgs); err != nil {
		log.Debug().Err(err).Str("stderr", res.Stderr).Msg("package listing unparseable")
		return nil, fmt.Errorf("%w at %s", types.ErrListPackages, monorepoPath)
	}
	return pkgs, nil
}

// PackScoped runs the package manager's pack command inside the named
// package. Whether it succeeded is decided by the caller with
// ScopedSucceeded.
func (t *Tool) PackScoped(ctx context.Context, monorepoPath, packageName string) (PackOutput, error) {
	bin, err := t.ResolveBinary(ctx, monorepoPath)
	if err != nil {
		return PackOutput{}, err
	}

	args := append([]string{"exec", "--scope", packageName, "--"}, t.pm.PackCommand()...)
	res, err := t.runner.Run(ctx, monorepoPath, bin, args...)
	if err != nil {
		return PackOutput{}, err
	}
	return PackOutput{
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
		Archive: t.pm.ArchiveName(res.Stdout),
	}, nil
}

// ScopedSucceeded reports whether a scoped command's stderr ends with the
// tool's success line.
func ScopedSucceeded(stderr string) bool {
	return strings.Contains(runner.LastLine(stderr), successMarker)
}
