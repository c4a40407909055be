package llm

import "fmt"

// GenerateError reports that every attempt against the generation endpoint
// failed. Err carries the last attempt's error.
type GenerateError struct {
	Attempts int
	Err      error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerateError) Unwrap() error { return e.Err }

// ParseError reports that no structured value could be recovered from a
// generator response. Raw is the unmodified response; Cleaned is the text as
// it looked after the last recovery transformation, kept for diagnostics.
type ParseError struct {
	Raw     string
	Cleaned string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no valid JSON in generator response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
