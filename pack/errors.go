package pack

import (
	"errors"
	"fmt"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
)

// Stage is a step of the packing state machine.
type Stage int

const (
	StageGenerate Stage = iota
	StageInitialPlacement
	StageRefine
	StageFinalize
)

func (s Stage) String() string {
	switch s {
	case StageGenerate:
		return "generate"
	case StageInitialPlacement:
		return "initial placement"
	case StageRefine:
		return "refine"
	case StageFinalize:
		return "finalize"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ErrStalled matches every *StallError with errors.Is.
var ErrStalled = errors.New("pack: stalled")

// StallError reports a stage that hit its iteration cap before reaching
// its goal. It carries the state reached so far.
type StallError struct {
	Stage      Stage
	Iterations int
	// Reached and Target are stage specific: grain volume for generate,
	// iterations for refine.
	Reached, Target float64
	// Partial holds the grains at the time of the stall.
	Partial []grain.Grain
}

func (e *StallError) Error() string {
	return fmt.Sprintf("pack: %s stalled after %d iterations at %.4g of %.4g", e.Stage, e.Iterations, e.Reached, e.Target)
}

// Unwrap returns ErrStalled.
func (e *StallError) Unwrap() error { return ErrStalled }
