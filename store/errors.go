// Package store is the single durable source of truth for users, admins and
// orders. It also defines the sentinel errors shared by the layers above;
// callers distinguish failure modes with errors.Is and translate them into
// user-visible replies or HTTP status codes.
package store

import "errors"

// ErrNotFound is returned when a referenced user, admin or order does not
// exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a role check fails, e.g. a non-admin trying
// to resolve an order.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyResolved is returned when an order is no longer pending. The
// losing side of a resolve race sees this.
var ErrAlreadyResolved = errors.New("order already resolved")

// ErrValidation is returned for malformed or empty input.
var ErrValidation = errors.New("invalid input")

// ErrUpstream is returned when the catalog service or the storage layer is
// unreachable or fails mid-operation.
var ErrUpstream = errors.New("upstream unavailable")
