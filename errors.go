package fheregex

import "fmt"

// SyntaxError reports a malformed pattern. It is always returned before
// any cryptographic work begins.
type SyntaxError struct {
	Pos     int    // byte offset into the pattern string
	Excerpt string // offending substring, may be empty at end of input
	Msg     string
}

func (e *SyntaxError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("fheregex: syntax error at %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("fheregex: syntax error at %d near %q: %s", e.Pos, e.Excerpt, e.Msg)
}

// UnsupportedError reports a syntactically valid construct the engine
// does not implement.
type UnsupportedError struct {
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("fheregex: unsupported construct %s", e.Construct)
}

// EvalError reports a backend primitive failure during circuit
// execution. Step identifies the atom or combination that failed.
// Homomorphic operations are deterministic, so the engine never
// retries; the original error is available via Unwrap.
type EvalError struct {
	Step string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("fheregex: evaluating %s: %v", e.Step, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
