package datastore

// Typed views of the common response shapes, used by the Client's
// convenience methods. Identifiers stay untyped since stores return them
// either as strings or as extended JSON such as {"$oid": "..."}.

// InsertOneResult is the response of insertOne.
type InsertOneResult struct {
	InsertedID any `json:"insertedId"`
}

// InsertManyResult is the response of insertMany.
type InsertManyResult struct {
	InsertedIDs []any `json:"insertedIds"`
}

// UpdateResult is the response of updateOne and updateMany.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedID    any   `json:"upsertedId,omitempty"`
}

// DeleteResult is the response of deleteOne and deleteMany.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// CountResult is the response of count.
type CountResult struct {
	Count int64 `json:"count"`
}
