package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/kingdom-gateway/internal/datastore"
)

// Handler adapts action data to one store operation and returns the
// store's response body. Store errors are returned unchanged.
type Handler func(ctx context.Context, database, collection string, data json.RawMessage) (json.RawMessage, error)

// Registry maps action names to handlers. It is fixed at construction and
// covers every datastore.Action.
type Registry struct {
	handlers map[datastore.Action]Handler
}

func NewRegistry(store datastore.StoreInterface) *Registry {
	r := &Registry{handlers: make(map[datastore.Action]Handler)}
	for _, action := range datastore.Actions() {
		r.handlers[action] = handlerFor(store, action)
	}
	return r
}

// Lookup returns the handler registered for name.
func (r *Registry) Lookup(name string) (datastore.Action, Handler, bool) {
	action, ok := datastore.ParseAction(name)
	if !ok {
		return "", nil, false
	}
	h, ok := r.handlers[action]
	return action, h, ok
}

// argsFor splits action data into store arguments.
type argsFor func(data json.RawMessage) datastore.Args

func handlerFor(store datastore.StoreInterface, action datastore.Action) Handler {
	var split argsFor
	switch action {
	case datastore.ActionInsertOne:
		split = func(data json.RawMessage) datastore.Args { return datastore.Args{Document: data} }
	case datastore.ActionInsertMany:
		split = func(data json.RawMessage) datastore.Args { return datastore.Args{Documents: data} }
	case datastore.ActionFindOne, datastore.ActionFind,
		datastore.ActionDeleteOne, datastore.ActionDeleteMany,
		datastore.ActionCount:
		split = func(data json.RawMessage) datastore.Args { return datastore.Args{Filter: data} }
	case datastore.ActionUpdateOne, datastore.ActionUpdateMany:
		split = func(data json.RawMessage) datastore.Args {
			filter, update := splitUpdate(data)
			return datastore.Args{Filter: filter, Update: update}
		}
	case datastore.ActionAggregate:
		split = func(data json.RawMessage) datastore.Args { return datastore.Args{Pipeline: pipelineOf(data)} }
	default:
		panic(fmt.Sprintf("command: no handler for action %q", action))
	}

	return func(ctx context.Context, database, collection string, data json.RawMessage) (json.RawMessage, error) {
		return store.Do(ctx, action, database, collection, split(data))
	}
}

// splitUpdate pulls the filter and update members out of data. Missing
// members come back nil and are forwarded as such.
func splitUpdate(data json.RawMessage) (json.RawMessage, json.RawMessage) {
	var parts struct {
		Filter json.RawMessage `json:"filter"`
		Update json.RawMessage `json:"update"`
	}
	_ = json.Unmarshal(data, &parts)
	return parts.Filter, parts.Update
}

// pipelineOf returns data's "pipeline" member when present, else data.
func pipelineOf(data json.RawMessage) json.RawMessage {
	var wrapper struct {
		Pipeline json.RawMessage `json:"pipeline"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Pipeline) > 0 {
		return wrapper.Pipeline
	}
	return data
}
