package segment

import (
	"errors"
	"fmt"
)

// Sentinel errors for non-fatal segmentation conditions. They are recorded
// in Diagnostics and never returned by Run.
var (
	ErrIterationCap         = errors.New("iteration cap exceeded")
	ErrHeuristicUnavailable = errors.New("heuristic unavailable")
)

// IterationCapError reports a pass that had not converged at its cap.
type IterationCapError struct {
	Pass string
	Cap  int
}

func (e *IterationCapError) Error() string {
	return fmt.Sprintf("%s: pass %s did not converge within %d iterations", ErrIterationCap, e.Pass, e.Cap)
}

func (e *IterationCapError) Unwrap() error { return ErrIterationCap }

// UnavailableError reports a pass that degraded to a no-op or declined
// decisions because a heuristic could not be evaluated.
type UnavailableError struct {
	Pass  string
	Cause error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: pass %s: %v", ErrHeuristicUnavailable, e.Pass, e.Cause)
	}
	return fmt.Sprintf("%s: pass %s", ErrHeuristicUnavailable, e.Pass)
}

func (e *UnavailableError) Unwrap() error { return ErrHeuristicUnavailable }

// IsIterationCap reports whether err records an exhausted iteration cap.
func IsIterationCap(err error) bool {
	var ce *IterationCapError
	return errors.As(err, &ce)
}

// IsUnavailable reports whether err records an unavailable heuristic.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// PassReport summarizes one pass.
type PassReport struct {
	Name       string
	Iterations int
	Changes    int
	Dropped    int
	Declined   int
	Converged  bool
	// RolledBack is set when the pass failed and the buffer was restored.
	RolledBack bool
	Err        error
}

// Diagnostics collects the pass reports of a run.
type Diagnostics struct {
	Passes []PassReport
}

// Errors returns the recorded non-fatal conditions in pass order.
func (d Diagnostics) Errors() []error {
	var out []error
	for _, p := range d.Passes {
		if p.Err != nil {
			out = append(out, p.Err)
		}
	}
	return out
}

// CapExceeded lists the passes that hit their iteration cap.
func (d Diagnostics) CapExceeded() []string {
	var out []string
	for _, p := range d.Passes {
		if IsIterationCap(p.Err) {
			out = append(out, p.Name)
		}
	}
	return out
}

// Pass returns the last report for name.
func (d Diagnostics) Pass(name string) (PassReport, bool) {
	for i := len(d.Passes) - 1; i >= 0; i-- {
		if d.Passes[i].Name == name {
			return d.Passes[i], true
		}
	}
	return PassReport{}, false
}
