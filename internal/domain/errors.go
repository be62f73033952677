package domain

import "errors"

var (
	// ErrConnection is returned when the initial storage connect fails. The
	// caller logs it and keeps running; later writes will fail with ErrWrite.
	ErrConnection = errors.New("storage connection failed")
	// ErrWrite is returned when a single insert or batch insert fails. The
	// record is dropped: no retry, no queueing.
	ErrWrite = errors.New("storage write failed")
	// ErrResolution is returned when no running container matches the
	// configured name. Fatal for the container poller, sampling never starts.
	ErrResolution = errors.New("container resolution failed")
	// ErrFetch is returned when a metrics collaborator (host sampler, broker)
	// fails. The tick is skipped and polling continues.
	ErrFetch = errors.New("metrics fetch failed")
)
