package manifest

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error code constants - unified across the loader and the CLI commands
// that render manifest diagnostics.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Declaration validation errors
	ErrCodeEmptyEventName  = "E101" // Event with an empty name
	ErrCodeEmptyPhase      = "E102" // Empty phase id in the baseline chain
	ErrCodeDuplicatePhase  = "E103" // Duplicate phase id in the baseline chain
	ErrCodeSelfConstraint  = "E104" // Constraint with equal endpoints
	ErrCodeEmptyConstraint = "E105" // Constraint with an empty endpoint
)

// LoadError is a manifest diagnostic with a stable code and, when the CUE
// source position is known, a file location.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError reports whether err is a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// CodeOf returns err's diagnostic code, or ErrCodeGeneric when err carries
// none.
func CodeOf(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
