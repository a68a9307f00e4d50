package datastore

import "fmt"

// RemoteStoreError reports a store call that failed in transport or was
// answered with a non-2xx status. StatusCode is 0 when no response arrived.
type RemoteStoreError struct {
	Action     Action
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteStoreError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("store %s: %v", e.Action, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("store %s: status %d: %v", e.Action, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("store %s: status %d: %s", e.Action, e.StatusCode, e.Body)
}

func (e *RemoteStoreError) Unwrap() error {
	return e.Err
}
