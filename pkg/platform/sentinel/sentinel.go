package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about records, not validation failures:
//   - ErrNotFound: record does not exist in the store
//   - ErrAlreadyUsed: a unique key (document, file number, visitor/inmate pair,
//     one in-progress visit per visitor) is already taken
//   - ErrInvalidState: a conditional write found the row in an unexpected state
//   - ErrCapacityReached: the facility was full when the admission was committed
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyUsed     = errors.New("already used")
	ErrInvalidState    = errors.New("invalid state")
	ErrCapacityReached = errors.New("capacity reached")
)
