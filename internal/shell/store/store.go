package store

import (
	"context"

	"github.com/ventaro/deedflow/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for deedflow entities.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListManagers(ctx context.Context) ([]domain.User, error)

	// Client operations
	CreateClient(ctx context.Context, client *domain.Client) error
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) error
	ListClients(ctx context.Context, opts ListOptions) ([]domain.Client, error)
	CountActiveContractsByClient(ctx context.Context, clientID string) (int, error)

	// Development operations
	CreateDevelopment(ctx context.Context, dev *domain.Development) error
	GetDevelopment(ctx context.Context, id string) (*domain.Development, error)
	UpdateDevelopment(ctx context.Context, dev *domain.Development) error
	ListDevelopments(ctx context.Context, opts ListOptions) ([]domain.Development, error)

	// Request operations
	CreateRequest(ctx context.Context, req *domain.Request) error
	GetRequest(ctx context.Context, id string) (*domain.Request, error)
	UpdateRequest(ctx context.Context, req *domain.Request) error
	ListRequests(ctx context.Context, opts ListOptions) ([]domain.Request, error)
	ListRequestsByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Request, error)

	// Contract operations
	CreateContract(ctx context.Context, contract *domain.Contract) error
	GetContract(ctx context.Context, id string) (*domain.Contract, error)
	GetContractByFolio(ctx context.Context, folio string) (*domain.Contract, error)
	UpdateContract(ctx context.Context, contract *domain.Contract) error
	ListContracts(ctx context.Context, opts ListOptions) ([]domain.Contract, error)
	// FolioInUse reports whether another contract row (excluding excludeID)
	// already carries the folio.
	FolioInUse(ctx context.Context, folio, excludeID string) (bool, error)

	// Notification operations
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotificationsByRecipient(ctx context.Context, recipientID string, opts ListOptions) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
