// Package repository implements MySQL-backed persistence for the
// inventory entities. Sentinel errors let handlers distinguish failure
// scenarios: not-found maps to HTTP 404, conflicts to 409. Storage
// errors raised inside a transaction body propagate untouched and roll
// back every write of that transaction.
package repository

import "errors"

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering with an email that exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrTokenNotFound is returned when a refresh token lookup yields no rows.
var ErrTokenNotFound = errors.New("refresh token not found")

// ErrTemplateNotFound is returned when a layout template lookup yields no rows.
var ErrTemplateNotFound = errors.New("layout template not found")

// ErrDiagramNotFound is returned when a seat diagram lookup yields no rows.
var ErrDiagramNotFound = errors.New("seat diagram not found")

// ErrSpaceNotFound is returned when a space lookup yields no rows.
var ErrSpaceNotFound = errors.New("space not found")

// ErrZoneNotFound is returned when a zone lookup yields no rows.
var ErrZoneNotFound = errors.New("zone not found")

// ErrBusNotFound is returned when a bus lookup yields no rows.
var ErrBusNotFound = errors.New("bus not found")

// ErrConflict is returned when an operation cannot proceed due to
// conflicting state, such as deleting a template that diagrams still
// reference.
var ErrConflict = errors.New("conflict")
