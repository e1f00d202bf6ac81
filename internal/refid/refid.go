// Package refid derives and validates package identifiers.
//
// A refid is a 32-character alphanumeric string naming exactly one package.
// It is derived from the source archive filename by stripping every extension
// (abc...xyz.tar.gz -> abc...xyz) and is immutable for the life of a job.
package refid

import (
	"path/filepath"
	"regexp"
	"strings"

	"gatekeeper/internal/services"
)

var pattern = regexp.MustCompile(`^[A-Za-z0-9]{32}$`)

// FromFilename derives the refid from a source archive filename by stripping
// all extensions.
func FromFilename(name string) string {
	base := filepath.Base(name)
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		return base[:idx]
	}
	return base
}

// Validate confirms the refid has the required lexical shape. It must run
// before any download or extraction so malformed identifiers are rejected
// cheaply.
func Validate(refid string) error {
	if !pattern.MatchString(refid) {
		return services.Wrap(services.ErrIdentifier, "identifying", "validate refid",
			refid+" is not a valid refid", nil)
	}
	return nil
}
