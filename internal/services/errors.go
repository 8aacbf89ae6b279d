package services

import (
	"errors"
	"fmt"
)

// All invariant checks run before any write, so every error here means the
// database was left untouched. Handlers translate these into JSON responses.

var (
	// ErrNotFound wraps record lookups that resolve nothing.
	ErrNotFound = errors.New("not_found")
	// ErrSelfReference rejects a tiers set as its own parent.
	ErrSelfReference = errors.New("self_reference")
)

// ValidationError reports a required classification field missing for the
// declared kind (or an invalid enumerated code). Recoverable by resubmission.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation_failed: %s %s", e.Field, e.Code)
}

// DependencyExistsError blocks a delete while dependents exist (children,
// dossiers, actions, documents). The caller must remove them first.
type DependencyExistsError struct {
	Dependency string
}

func (e *DependencyExistsError) Error() string {
	return "dependency_exists: " + e.Dependency
}

// ReferentialIntegrityError reports a referenced id (mediator, parent...)
// that does not resolve to an existing record. Treated as caller input error.
type ReferentialIntegrityError struct {
	Field string
}

func (e *ReferentialIntegrityError) Error() string {
	return "referential_integrity: " + e.Field
}
