package memory

import "errors"

var (
	ErrNotFound        = errors.New("memory not found")
	ErrProtected       = errors.New("memory is protected from forgetting")
	ErrRepressed       = errors.New("memory is repressed")
	ErrNotTraumatic    = errors.New("only traumatic memories can be repressed")
	ErrSelfAssociation = errors.New("memory cannot be associated with itself")
	ErrMisconfigured   = errors.New("memory store misconfigured")
	ErrStoreFull       = errors.New("memory store full of protected entries")
)
