package repository

// ToggleOutcome reports which branch a toggle operation took: whether the
// edge row was created or removed. Handlers use it to pick the HTTP status
// (201 for a new edge, 200 for a removed one).
type ToggleOutcome int

const (
	// ToggleCreated means the edge did not exist and was inserted.
	ToggleCreated ToggleOutcome = iota + 1
	// ToggleRemoved means the edge existed and was deleted.
	ToggleRemoved
)

// String returns a short form suitable for logs and event payloads.
func (o ToggleOutcome) String() string {
	if o == ToggleCreated {
		return "created"
	}
	return "removed"
}

// deltaFor returns the counter adjustment implied by a toggle outcome:
// +1 when the edge was created, -1 when it was removed. Counter columns
// are denormalized caches of edge-table cardinality, so every edge
// mutation applies exactly this delta inside the same transaction.
func deltaFor(o ToggleOutcome) int {
	if o == ToggleCreated {
		return 1
	}
	return -1
}
