package types

import "fmt"

// Stage names one step of the install pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	StageLocate  Stage = "locate"
	StagePack    Stage = "pack"
	StageStage   Stage = "stage"
	StageInstall Stage = "install"
)

// Stages lists every pipeline stage in execution order.
var Stages = []Stage{StageLocate, StagePack, StageStage, StageInstall}

// Progressive returns the progress label shown while the stage runs.
func (s Stage) Progressive() string {
	switch s {
	case StageLocate:
		return "finding"
	case StagePack:
		return "packing"
	case StageStage:
		return "staging"
	case StageInstall:
		return "installing"
	default:
		return string(s)
	}
}

// StageError reports the stage at which a package failed. Output holds the
// captured stderr of the failing tool, if any.
type StageError struct {
	Package string
	Stage   Stage
	Err     error
	Output  string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Package, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
