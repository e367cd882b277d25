package deploy

import (
	"errors"
	"fmt"
)

// ErrDeclined is returned when the operator refuses the first-run install.
// It is an outcome, not a failure: nothing was written.
var ErrDeclined = errors.New("installation declined")

// ErrMarkerMismatch means the extracted version marker disagrees with the
// bundle's own version string.
var ErrMarkerMismatch = errors.New("extracted version marker does not match bundle")

// StepError names the pipeline step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// InstallError is a fatal first-run failure. A partial tree may remain; the
// install-incomplete marker makes the next start retry the install.
type InstallError struct {
	Step string
	Err  error
}

func (e *InstallError) Error() string { return fmt.Sprintf("install: %s: %v", e.Step, e.Err) }
func (e *InstallError) Unwrap() error { return e.Err }

// UpdateError is a fatal reconcile failure. The live web directory is left
// as it was unless the failure happened after the swap.
type UpdateError struct {
	Step string
	Err  error
}

func (e *UpdateError) Error() string { return fmt.Sprintf("update: %s: %v", e.Step, e.Err) }
func (e *UpdateError) Unwrap() error { return e.Err }

func stepParts(err error) (string, error) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, se.Err
	}
	return "", err
}
