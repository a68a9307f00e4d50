package datastore

import (
	"context"
	"encoding/json"
)

// Args are the kind-specific arguments of one action. A nil value or an
// empty json.RawMessage is left out of the request body.
type Args struct {
	Document  any
	Documents any
	Filter    any
	Update    any
	Pipeline  any
}

// StoreInterface executes a remote store action and returns the response
// body as the store sent it.
type StoreInterface interface {
	Do(ctx context.Context, action Action, database, collection string, args Args) (json.RawMessage, error)
}
