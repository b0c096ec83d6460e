package domain

// BackendResult is the normalized outcome of a backend operation.
//
// Err is non-nil only for local failures (transport, timeout, bad status,
// undecodable body). In that case Success is false and Message carries a
// diagnostic. A reachable backend that refuses the request yields
// Success=false with Err nil and an optional business Message.
type BackendResult struct {
	Success bool
	Message string
	Err     error
}

// Failure builds the synthetic result for a local failure.
func Failure(err error) BackendResult {
	return BackendResult{Success: false, Message: err.Error(), Err: err}
}

// Denied reports whether the backend was reached and said no.
func (r BackendResult) Denied() bool {
	return !r.Success && r.Err == nil
}
