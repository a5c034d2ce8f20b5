package repository

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Common repository errors
var (
	// ErrIssueNotFound is returned when an issue is not found
	ErrIssueNotFound = errors.New("issue not found")

	// ErrTagNotFound is returned when a tag is not found
	ErrTagNotFound = errors.New("tag not found")

	// ErrTagNameTaken is returned when another tag already uses the name
	// in any casing
	ErrTagNameTaken = errors.New("tag with this name already exists")

	// ErrTagInUse is returned when a tag is still assigned to issues
	ErrTagInUse = errors.New("cannot delete tag that is assigned to issues")

	// ErrDuplicate is returned for store-level uniqueness violations
	ErrDuplicate = errors.New("resource already exists")

	// ErrInvalidReference is returned for store-level foreign key violations
	ErrInvalidReference = errors.New("invalid reference to related resource")
)

// translateConstraint maps SQLite constraint violations onto the sentinel
// errors handlers know how to report. Anything else passes through.
func translateConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique:
		return ErrDuplicate
	case sqlite3.ErrConstraintForeignKey:
		return ErrInvalidReference
	}
	return err
}
