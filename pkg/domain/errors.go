package domain

import "fmt"

// Error codes carried in result envelopes. They follow the codes a PostgREST
// backend would return so consumers can switch on them unchanged.
const (
	CodeUndefinedTable  = "42P01"
	CodeUniqueViolation = "23505"
	CodeParseError      = "PGRST100"
	CodeStorage         = "StorageError"
)

// Error is the error value of a result envelope. The in-memory backend leaves it
// nil for every well-formed request on a known table.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// ErrUndefinedTable builds the envelope error for an unknown table.
func ErrUndefinedTable(table string) *Error {
	return &Error{
		Message: fmt.Sprintf("relation %q does not exist", table),
		Code:    CodeUndefinedTable,
	}
}

// ErrDuplicateID builds the envelope error for an insert reusing an existing id.
func ErrDuplicateID(table, id string) *Error {
	return &Error{
		Message: fmt.Sprintf("duplicate key value violates unique constraint %q", table+"_pkey"),
		Code:    CodeUniqueViolation,
		Details: fmt.Sprintf("Key (id)=(%s) already exists.", id),
	}
}

// Action identifies the kind of mutation captured in a Change.
type Action string

// Mutation actions.
const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change captures a single record mutation applied to the store.
type Change struct {
	Table  string `json:"table"`
	Action Action `json:"action"`
	Before Record `json:"before,omitempty"`
	After  Record `json:"after,omitempty"`
}
