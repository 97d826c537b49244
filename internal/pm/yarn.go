package pm

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/pkl/internal/runner"
)

const yarnWarningPrefix = "warning "

var wroteTarball = regexp.MustCompile(`Wrote tarball to "([^"]+)"`)

// Yarn drives the yarn (v1) CLI, whose --json mode emits one JSON event per
// line.
type Yarn struct{}

// Name implements PackageManager.
func (Yarn) Name() string { return NameYarn }

// yarnEvent is a single line of yarn --json output.
type yarnEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HasLocal runs yarn list filtered to dep and looks for a dep@version tree.
func (Yarn) HasLocal(ctx context.Context, r runner.Runner, dir, dep string) (bool, error) {
	res, err := r.Run(ctx, dir, NameYarn, "list", "--depth=0", "--pattern="+dep, "--json")
	if err != nil {
		return false, err
	}

	var event yarnEvent
	if err := json.Unmarshal([]byte(runner.LastLine(res.Stdout)), &event); err != nil {
		return false, fmt.Errorf("parsing yarn list output: %w", err)
	}
	var tree struct {
		Trees []struct {
			Name string `json:"name"`
		} `json:"trees"`
	}
	if err := json.Unmarshal(event.Data, &tree); err != nil {
		return false, fmt.Errorf("parsing yarn list tree: %w", err)
	}
	for _, t := range tree.Trees {
		if strings.HasPrefix(t.Name, dep+"@") {
			return true, nil
		}
	}
	return false, nil
}

// PackCommand implements PackageManager.
func (Yarn) PackCommand() []string { return []string{NameYarn, "pack", "--json"} }

// ArchiveName reads the final JSON event of yarn pack --json and pulls the
// tarball path out of its message.
func (Yarn) ArchiveName(stdout string) string {
	var event yarnEvent
	if err := json.Unmarshal([]byte(runner.LastLine(stdout)), &event); err != nil {
		return ""
	}
	var msg string
	if err := json.Unmarshal(event.Data, &msg); err != nil {
		return ""
	}
	m := wroteTarball.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	return filepath.Base(m[1])
}

// InstallFromPath runs yarn add file:<relPath>.
func (Yarn) InstallFromPath(ctx context.Context, r runner.Runner, projectDir, relPath string) (runner.Result, error) {
	return r.Run(ctx, projectDir, NameYarn, "add", "file:"+relPath)
}

// IsInstallFailure implements PackageManager.
func (Yarn) IsInstallFailure(stderr string) bool {
	return hasErrorLines(stderr, yarnWarningPrefix)
}
