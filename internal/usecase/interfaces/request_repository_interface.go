package interfaces

import (
	"context"
	"errors"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
)

// ErrVersionConflict is returned by Update when the stored version no longer
// matches the one the caller read. The use case reloads and retries.
var ErrVersionConflict = errors.New("request version conflict")

// IRequestRepository abstracts DynamoDB persistence for Request.
//
// The lifecycle engine must be able to:
//   - create a request at submission time
//   - load one request for a read-modify-write cycle
//   - persist a mutated request guarded by the version it was read at
//   - list requests per account and across all accounts, newest first

type IRequestRepository interface {
	Create(ctx context.Context, r entities.Request) (entities.Request, error)
	GetByID(ctx context.Context, id string) (entities.Request, error)
	ListByAccountID(ctx context.Context, accountID string) ([]entities.Request, error)
	ListAll(ctx context.Context) ([]entities.Request, error)
	Update(ctx context.Context, r entities.Request, expectedVersion int64) (entities.Request, error)
}
