package repository

import "context"

// Transactor runs fn as one unit of work. Repository calls made with the context passed to fn
// join the same transaction; nested calls reuse it. Returning an error rolls the work back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
