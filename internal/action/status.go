package action

import "fmt"

// Mode is the coarse state of a Controller.
type Mode string

const (
	ModeNeutral    Mode = "neutral"    // Nothing scheduled, nothing to show.
	ModeCanceling  Mode = "canceling"  // A pending invocation was superseded.
	ModeProcessing Mode = "processing" // The operation is running.
	ModeDone       Mode = "done"       // The operation settled.
)

// Status is the externally observable state of a Controller.
//
// Result is set only when Mode is ModeDone and the operation returned
// without error. Err is set only when Mode is ModeDone and the operation
// failed; Result is nil in that case.
type Status struct {
	Mode   Mode
	Result *bool
	Err    error
	Input  string
}

func neutral() Status   { return Status{Mode: ModeNeutral} }
func canceling() Status { return Status{Mode: ModeCanceling} }

func processing(input string) Status {
	return Status{Mode: ModeProcessing, Input: input}
}

func done(input string, result bool) Status {
	return Status{Mode: ModeDone, Result: &result, Input: input}
}

func failed(input string, err error) Status {
	return Status{Mode: ModeDone, Err: err, Input: input}
}

// Succeeded reports whether the status is done with a true result.
func (s Status) Succeeded() bool {
	return s.Mode == ModeDone && s.Err == nil && s.Result != nil && *s.Result
}

// Failed reports whether the status is done with a false result or an error.
func (s Status) Failed() bool {
	return s.Mode == ModeDone && !s.Succeeded()
}

func (s Status) String() string {
	switch {
	case s.Mode != ModeDone:
		return string(s.Mode)
	case s.Err != nil:
		return fmt.Sprintf("done(error: %v)", s.Err)
	case s.Result != nil:
		return fmt.Sprintf("done(%t)", *s.Result)
	default:
		return "done"
	}
}
