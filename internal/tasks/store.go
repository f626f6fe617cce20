package tasks

import "context"

// Store is the backing store of the todo API. The in-memory and SQL
// implementations share one contract: the same requests produce the
// same responses.
type Store interface {
	List(ctx context.Context, q ListQuery) ([]Task, error)
	Get(ctx context.Context, id int) (Task, error)
	Create(ctx context.Context, req CreateRequest) (Task, error)
	Update(ctx context.Context, id int, req UpdateRequest) (Task, error)
	Delete(ctx context.Context, id int) error
	Batch(ctx context.Context, req BatchRequest) (int, error)
	Stats(ctx context.Context) (Stats, error)
	Categories(ctx context.Context) ([]string, error)
	Close() error
}
