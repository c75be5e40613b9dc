package cli

import "fmt"

const (
	exitPass  = 0
	exitFail  = 1
	exitUsage = 2
)

// ExitError carries a process exit status out of a RunE handler so deferred
// cleanup runs before the process exits.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func fail(err error) error {
	return &ExitError{Code: exitFail, Err: err}
}

func usageError(err error) error {
	return &ExitError{Code: exitUsage, Err: err}
}
