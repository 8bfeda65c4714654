package archive

import "fmt"

// UnsupportedArchiveError is returned when the input path has neither a
// recognized archive extension nor is a directory.
type UnsupportedArchiveError struct {
	Path string
}

func (e *UnsupportedArchiveError) Error() string {
	return fmt.Sprintf("unsupported archive format: %s", e.Path)
}

// RootNotFoundError is returned when no matrix/matrix sentinel is found
// within depth 2 of the input.
type RootNotFoundError struct {
	Path string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("could not locate ODB++ root (matrix/matrix) under %s", e.Path)
}

// StepNotFoundError is returned when steps/ is empty or a named step is
// missing.
type StepNotFoundError struct {
	Root string
	Step string
}

func (e *StepNotFoundError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("no steps found under %s", e.Root)
	}
	return fmt.Sprintf("step %q not found under %s", e.Step, e.Root)
}

// MatrixMissingError is returned when matrix/matrix was located by root
// discovery but could not be read.
type MatrixMissingError struct {
	Path string
	Err  error
}

func (e *MatrixMissingError) Error() string {
	return fmt.Sprintf("matrix/matrix unreadable at %s: %v", e.Path, e.Err)
}

func (e *MatrixMissingError) Unwrap() error { return e.Err }
