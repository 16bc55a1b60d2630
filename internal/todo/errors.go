package todo

import "fmt"

// IOError is a storage read or write failure other than "absent". It is the
// only failure the Store reports: the mutation that hit it was not durably
// applied.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MalformedError means persisted content could not be decoded. Store.Load
// recovers from it by starting empty.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed data in %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
