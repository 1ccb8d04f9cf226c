package catalog

import "context"

// Store is the persistent registry of software entries.
//
// List and Search order entries by name, then id. Insert and Update return
// ErrConflict when another entry already has the name; Get, Update and Delete
// return ErrNotFound for an unknown id. Every mutation is durable on return.
type Store interface {
	List(ctx context.Context) ([]*SoftwareEntry, error)
	Get(ctx context.Context, id int64) (*SoftwareEntry, error)
	Search(ctx context.Context, substring string) ([]*SoftwareEntry, error)
	Insert(ctx context.Context, entry *SoftwareEntry) (int64, error)
	Update(ctx context.Context, id int64, entry *SoftwareEntry) error
	Delete(ctx context.Context, id int64) error
}
