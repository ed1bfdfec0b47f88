package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Catalogs and stores return these
// (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: layer or session does not exist
// - ErrConflict: an entity with the same identity already exists
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
