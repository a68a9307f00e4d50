package datastore

// Action is one of the remote store's operation kinds. The set is closed;
// the values double as the path segment in POST <baseURL>/action/<kind>.
type Action string

const (
	ActionInsertOne  Action = "insertOne"
	ActionInsertMany Action = "insertMany"
	ActionFindOne    Action = "findOne"
	ActionFind       Action = "find"
	ActionUpdateOne  Action = "updateOne"
	ActionUpdateMany Action = "updateMany"
	ActionDeleteOne  Action = "deleteOne"
	ActionDeleteMany Action = "deleteMany"
	ActionCount      Action = "count"
	ActionAggregate  Action = "aggregate"
)

var actions = []Action{
	ActionInsertOne,
	ActionInsertMany,
	ActionFindOne,
	ActionFind,
	ActionUpdateOne,
	ActionUpdateMany,
	ActionDeleteOne,
	ActionDeleteMany,
	ActionCount,
	ActionAggregate,
}

// Actions returns every supported action.
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// ParseAction maps a command name onto an Action.
func ParseAction(name string) (Action, bool) {
	for _, a := range actions {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

func (a Action) String() string {
	return string(a)
}
