package shell

import "strconv"

// ExitCode is a child process exit status. Zero means success.
type ExitCode int

const (
	// ExitStartFailure is reported when the shell itself could not be started,
	// mirroring the POSIX "command not found" status.
	ExitStartFailure ExitCode = 127
	// exitSignalBase is added to the signal number for signal terminations.
	exitSignalBase ExitCode = 128
)

// IsSuccess reports whether the exit code indicates success.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal representation of c.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
