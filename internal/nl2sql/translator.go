package nl2sql

import "context"

// Translator turns one Russian question into one single-scalar SQL query.
// Implementations do not retry; retry policy belongs to the caller.
type Translator interface {
	Translate(ctx context.Context, question string) (string, error)
}
