// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/pkl/internal/runner"
)

// Call records one invocation.
type Call struct {
	Dir     string
	Command string
}

// Response is the scripted outcome of a command line. Hook, when set, runs
// before the result is returned, e.g. to create the files a tool would.
type Response struct {
	Result runner.Result
	Err    error
	Hook   func(dir string)
}

// Fake answers commands from a script keyed by the full command line
// ("lerna ls --json"). Unscripted commands fail with an error.
type Fake struct {
	mu     sync.Mutex
	script map[string]Response
	calls  []Call
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{script: make(map[string]Response)}
}

// On scripts the response for a command line.
func (f *Fake) On(cmdline string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[cmdline] = resp
	return f
}

// OnOutput scripts stdout and stderr for a command line.
func (f *Fake) OnOutput(cmdline, stdout, stderr string) *Fake {
	return f.On(cmdline, Response{Result: runner.Result{Stdout: stdout, Stderr: stderr}})
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, dir, name string, args ...string) (runner.Result, error) {
	cmdline := runner.CommandLine(name, args...)

	f.mu.Lock()
	f.calls = append(f.calls, Call{Dir: dir, Command: cmdline})
	resp, ok := f.script[cmdline]
	f.mu.Unlock()

	if !ok {
		return runner.Result{}, fmt.Errorf("unscripted command %q", cmdline)
	}
	if resp.Hook != nil {
		resp.Hook(dir)
	}
	return resp.Result, resp.Err
}

// Calls returns the recorded invocations in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Commands returns the recorded command lines in order.
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Command
	}
	return out
}
