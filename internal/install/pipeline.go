package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mesh-intelligence/pkl/internal/history"
	"github.com/mesh-intelligence/pkl/internal/monorepo"
	"github.com/mesh-intelligence/pkl/internal/pack"
	"github.com/mesh-intelligence/pkl/pkg/types"
)

// Resolver maps a monorepo name to its checkout path.
type Resolver interface {
	Resolve(name string) (string, bool)
}

// Progress observes a batch as it runs.
type Progress interface {
	Started(pkg string, stage types.Stage)
	Failed(pkg string, stage types.Stage)
	Installed(pkg string)
}

// Recorder receives one entry per installed package.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Request is a batch of packages to install from one monorepo.
type Request struct {
	Monorepo   string
	Packages   []string
	ProjectDir string
}

// Installed describes one successfully installed package.
type Installed struct {
	Requested string
	Reference types.PackageReference
	Archive   string
}

// Report summarizes a batch. On failure it holds the packages installed
// before the failing one.
type Report struct {
	BatchID   string
	Monorepo  string
	Installed []Installed
}

// Pipeline installs packages from registered monorepos.
type Pipeline struct {
	monorepos Resolver
	locator   *monorepo.Locator
	packer    *pack.Packer
	installer *Installer
	progress  Progress
	recorder  Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress reports stage transitions to p.
func WithProgress(p Progress) Option {
	return func(pl *Pipeline) { pl.progress = p }
}

// WithRecorder records every installed package with r.
func WithRecorder(r Recorder) Option {
	return func(pl *Pipeline) { pl.recorder = r }
}

// NewPipeline wires the locate, pack, stage and install steps around tool.
// Installs run through the same runner and package manager as tool.
func NewPipeline(monorepos Resolver, tool *monorepo.Tool, installer *Installer, opts ...Option) *Pipeline {
	pl := &Pipeline{
		monorepos: monorepos,
		locator:   monorepo.NewLocator(tool),
		packer:    pack.New(tool),
		installer: installer,
		progress:  nopProgress{},
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Run installs req.Packages in order. The first failing package stops the
// batch: later packages are not attempted and earlier ones stay installed.
// Failures are returned as *types.StageError, except an unknown monorepo
// which returns types.ErrUnknownMonorepo before any package is touched.
func (pl *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	monorepoPath, ok := pl.monorepos.Resolve(req.Monorepo)
	if !ok {
		return nil, types.ErrUnknownMonorepo
	}

	report := &Report{BatchID: history.NewID(), Monorepo: req.Monorepo}
	logger := log.With().Str("batch", report.BatchID).Str("monorepo", req.Monorepo).Logger()

	for _, pkg := range req.Packages {
		logger.Debug().Str("package", pkg).Msg("installing")
		installed, err := pl.runOne(ctx, monorepoPath, req.ProjectDir, pkg)
		if err != nil {
			var se *types.StageError
			if errors.As(err, &se) {
				pl.progress.Failed(pkg, se.Stage)
			}
			logger.Debug().Err(err).Str("package", pkg).Msg("batch aborted")
			return report, err
		}
		pl.progress.Installed(pkg)
		report.Installed = append(report.Installed, installed)
		pl.record(ctx, req, report.BatchID, installed)
	}
	return report, nil
}

func (pl *Pipeline) runOne(ctx context.Context, monorepoPath, projectDir, pkg string) (Installed, error) {
	fail := func(stage types.Stage, err error, output string) (Installed, error) {
		return Installed{}, &types.StageError{Package: pkg, Stage: stage, Err: err, Output: output}
	}

	pl.progress.Started(pkg, types.StageLocate)
	located, err := pl.locator.Locate(ctx, monorepoPath, pkg)
	if err != nil {
		return fail(types.StageLocate, err, "")
	}

	pl.progress.Started(pkg, types.StagePack)
	packed, err := pl.packer.Pack(ctx, monorepoPath, located.Location)
	if err != nil {
		return fail(types.StagePack, err, "")
	}
	if packed.Failed {
		output := packed.Stderr
		if packed.Archive == "" && packed.Stdout != "" {
			output = strings.TrimSpace(packed.Stdout + "\n" + packed.Stderr)
		}
		return fail(types.StagePack, types.ErrPackFailed, output)
	}

	pl.progress.Started(pkg, types.StageStage)
	archive, err := Stage(projectDir, filepath.Join(located.Location, packed.Archive))
	if err != nil {
		return fail(types.StageStage, err, "")
	}

	pl.progress.Started(pkg, types.StageInstall)
	res, err := pl.installer.Install(ctx, projectDir, archive)
	if err != nil {
		return fail(types.StageInstall, err, "")
	}
	if res.Failed {
		return fail(types.StageInstall, types.ErrInstallFailed, res.Stderr)
	}

	return Installed{
		Requested: pkg,
		Reference: located.Manifest.Reference(),
		Archive:   archive,
	}, nil
}

// record stores an installed package. Recording is best effort: the
// package is already installed, so a failure is only logged.
func (pl *Pipeline) record(ctx context.Context, req Request, batchID string, in Installed) {
	if pl.recorder == nil {
		return
	}
	err := pl.recorder.Record(ctx, history.Entry{
		BatchID:   batchID,
		Monorepo:  req.Monorepo,
		Requested: in.Requested,
		Name:      in.Reference.Name,
		Version:   in.Reference.Version,
		Archive:   in.Archive,
		Project:   req.ProjectDir,
	})
	if err != nil {
		log.Warn().Err(err).Str("package", in.Requested).Msg("install not recorded in history")
	}
}

type nopProgress struct{}

func (nopProgress) Started(string, types.Stage) {}
func (nopProgress) Failed(string, types.Stage)  {}
func (nopProgress) Installed(string)            {}

// Summary renders one line per installed package:
// " - <requested> (<monorepo>) → <name>@<version>".
func (r *Report) Summary() []string {
	lines := make([]string, 0, len(r.Installed))
	for _, in := range r.Installed {
		lines = append(lines, fmt.Sprintf(" - %s (%s) → %s", in.Requested, r.Monorepo, in.Reference))
	}
	return lines
}
