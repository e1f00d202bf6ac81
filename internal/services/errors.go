package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the validation error taxonomy. Every step failure is
// tagged with exactly one of these via Wrap.
var (
	ErrIdentifier          = errors.New("identifier error")
	ErrExtraction          = errors.New("extraction error")
	ErrStructural          = errors.New("structural conformance error")
	ErrAssetStructure      = errors.New("asset structure error")
	ErrPolicy              = errors.New("policy resolution error")
	ErrConformance         = errors.New("format conformance error")
	ErrDestinationConflict = errors.New("destination conflict")
	ErrConfiguration       = errors.New("configuration error")
	ErrTransient           = errors.New("transient failure")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the taxonomy name for a wrapped error, suitable for structured
// notification attributes and ledger records.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIdentifier):
		return "identifier"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrStructural):
		return "structural_conformance"
	case errors.Is(err, ErrAssetStructure):
		return "asset_structure"
	case errors.Is(err, ErrPolicy):
		return "policy_resolution"
	case errors.Is(err, ErrConformance):
		return "format_conformance"
	case errors.Is(err, ErrDestinationConflict):
		return "destination_conflict"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "transient"
	}
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
