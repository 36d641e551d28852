package domain

import "errors"

// ErrRecordNotFound is returned when a saved prompt or wildcard list does not exist.
var ErrRecordNotFound = errors.New("record not found")

// ErrNameRequired is returned when a record is saved or addressed without a name.
var ErrNameRequired = errors.New("name is required")

// ErrUnknownCategory is returned for a library category other than dual, single or wildcard.
var ErrUnknownCategory = errors.New("unknown category")

// ErrNodeNotFound is returned when a node ID is not registered with the editor host.
var ErrNodeNotFound = errors.New("node not found")

// ErrUnknownKind is returned when a node kind is not one of the supported node types.
var ErrUnknownKind = errors.New("unknown node kind")

// ErrUnknownField is returned when a text field does not exist on a node kind.
var ErrUnknownField = errors.New("unknown text field")

// ErrInvalidInputCount is returned when a combiner input count is outside its range.
var ErrInvalidInputCount = errors.New("invalid input count")
