package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventaro/deedflow/internal/core/domain"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func createTestUser(t *testing.T, store Store, id string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:    id,
		Name:  "Test " + id,
		Email: id + "@example.com",
		Role:  role,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createTestClient(t *testing.T, store Store, id string) *domain.Client {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	client := &domain.Client{
		ID:        id,
		Name:      "MARIA LOPEZ",
		BirthDate: "1985-03-12",
		Phone:     "5551234567",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateClient(context.Background(), client))
	return client
}

func createTestDevelopment(t *testing.T, store Store, id string) *domain.Development {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	dev := &domain.Development{
		ID:        id,
		Name:      "LOMAS DEL SUR",
		Lot:       "12",
		Block:     "B",
		AreaM2:    "120.5",
		Price:     "450000.00",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateDevelopment(context.Background(), dev))
	return dev
}

func createTestRequest(t *testing.T, store Store, ownerID string) *domain.Request {
	t.Helper()
	req := domain.NewRequest(ownerID)
	req.ClientName = "MARIA LOPEZ"
	req.Price = "450000.00"
	require.NoError(t, store.CreateRequest(context.Background(), req))
	return req
}

func createTestContract(t *testing.T, store Store, folio, clientID, devID string) *domain.Contract {
	t.Helper()
	contract := domain.NewContract(folio, clientID, devID, "")
	require.NoError(t, store.CreateContract(context.Background(), contract))
	return contract
}

// =============================================================================
// User Tests
// =============================================================================

func TestCreateUser_Success(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "user-1", domain.RoleUser)

	retrieved, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
	assert.Equal(t, user.Email, retrieved.Email)
	assert.Equal(t, domain.RoleUser, retrieved.Role)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "user-1", domain.RoleUser)

	dup := &domain.User{ID: "user-2", Name: "Dup", Email: "user-1@example.com", Role: domain.RoleUser}
	err := store.CreateUser(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestGetUserByEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "user-1", domain.RoleModerator)

	retrieved, err := store.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestListManagers(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "user-1", domain.RoleUser)
	createTestUser(t, store, "mod-1", domain.RoleModerator)
	createTestUser(t, store, "owner-1", domain.RoleOwner)
	createTestUser(t, store, "admin-1", domain.RoleAdmin)

	managers, err := store.ListManagers(ctx)
	require.NoError(t, err)
	require.Len(t, managers, 3)
	for _, m := range managers {
		assert.True(t, m.Role.IsManager())
	}
}

// =============================================================================
// Client Tests
// =============================================================================

func TestClientCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")

	retrieved, err := store.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.Name, retrieved.Name)
	assert.Equal(t, client.BirthDate, retrieved.BirthDate)
	assert.False(t, retrieved.Archived)

	retrieved.Archived = true
	retrieved.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.UpdateClient(ctx, retrieved))

	again, err := store.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, again.Archived)
}

func TestUpdateClient_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.UpdateClient(ctx, &domain.Client{ID: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountActiveContractsByClient(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")

	count, err := store.CountActiveContractsByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	createTestContract(t, store, "A-100", client.ID, dev.ID)
	cancelled := createTestContract(t, store, "A-101", client.ID, dev.ID)
	require.NoError(t, cancelled.Cancel("client defaulted on payments"))
	require.NoError(t, store.UpdateContract(ctx, cancelled))

	count, err = store.CountActiveContractsByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// =============================================================================
// Request Tests
// =============================================================================

func TestRequestRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	owner := createTestUser(t, store, "user-1", domain.RoleUser)

	req := domain.NewRequest(owner.ID)
	req.ClientName = "MARIA LOPEZ"
	req.BirthDate = "1985-03-12"
	req.IdentificationType = "ine"
	req.NationalIDNumber = "LPMM850312"
	req.Price = "450000.00"
	req.DownPayment = "50000.00"
	req.TermMonths = 48
	req.Executor = domain.Executor{
		Active:       true,
		Name:         "JUAN LOPEZ",
		Age:          "45",
		Relationship: "HERMANO",
	}
	req.AnnualPayment = domain.AnnualPayment{
		Enabled:   true,
		Amount:    "20000.00",
		Date:      "2026-12-15",
		TermYears: 4,
	}
	require.NoError(t, store.CreateRequest(ctx, req))

	retrieved, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ClientName, retrieved.ClientName)
	assert.Equal(t, domain.StateDraft, retrieved.State)
	assert.Equal(t, req.Executor, retrieved.Executor)
	assert.Equal(t, req.AnnualPayment, retrieved.AnnualPayment)
	assert.Equal(t, 48, retrieved.TermMonths)
}

func TestCreateRequest_UnknownOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	req := domain.NewRequest("ghost")
	err := store.CreateRequest(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestUpdateRequest_Transition(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	owner := createTestUser(t, store, "user-1", domain.RoleUser)
	req := createTestRequest(t, store, owner.ID)

	require.NoError(t, req.Transition(domain.StateSubmitted, owner.ID, ""))
	require.NoError(t, store.UpdateRequest(ctx, req))

	retrieved, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSubmitted, retrieved.State)
	assert.Equal(t, owner.ID, retrieved.StateActor)
}

func TestListRequestsByOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice", domain.RoleUser)
	bob := createTestUser(t, store, "bob", domain.RoleUser)
	createTestRequest(t, store, alice.ID)
	createTestRequest(t, store, alice.ID)
	createTestRequest(t, store, bob.ID)

	mine, err := store.ListRequestsByOwner(ctx, alice.ID, DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := store.ListRequests(ctx, DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// =============================================================================
// Contract Tests
// =============================================================================

func TestContractRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")

	contract := domain.NewContract("a-100", client.ID, dev.ID, "")
	contract.Aggregate = domain.Aggregate{
		Version: domain.AggregateVersion,
		Client:  domain.ClientSegment{Name: "MARIA LOPEZ"},
		Contract: domain.ContractSegment{
			Folio: "A-100",
			Price: "450000.00",
		},
	}
	require.NoError(t, store.CreateContract(ctx, contract))

	retrieved, err := store.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-100", retrieved.Folio) // folio stored normalized
	assert.Equal(t, domain.ContractActive, retrieved.Status)
	assert.Equal(t, "MARIA LOPEZ", retrieved.Aggregate.Client.Name)
	assert.Equal(t, "450000.00", retrieved.Aggregate.Contract.Price)
}

func TestCreateContract_DuplicateFolio(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")
	createTestContract(t, store, "A-100", client.ID, dev.ID)

	dup := domain.NewContract("a-100", client.ID, dev.ID, "")
	err := store.CreateContract(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateFolio)
	assert.True(t, IsDuplicateFolio(err))
}

func TestGetContractByFolio(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")
	contract := createTestContract(t, store, "A-100", client.ID, dev.ID)

	// Lookup is case-insensitive on the business key.
	retrieved, err := store.GetContractByFolio(ctx, "  a-100 ")
	require.NoError(t, err)
	assert.Equal(t, contract.ID, retrieved.ID)
}

func TestFolioInUse(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")
	contract := createTestContract(t, store, "A-100", client.ID, dev.ID)

	inUse, err := store.FolioInUse(ctx, "a-100", "")
	require.NoError(t, err)
	assert.True(t, inUse)

	// The contract itself does not collide with its own folio.
	inUse, err = store.FolioInUse(ctx, "A-100", contract.ID)
	require.NoError(t, err)
	assert.False(t, inUse)

	inUse, err = store.FolioInUse(ctx, "B-200", "")
	require.NoError(t, err)
	assert.False(t, inUse)
}

func TestCancelContract_Persisted(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")
	contract := createTestContract(t, store, "A-100", client.ID, dev.ID)

	require.NoError(t, contract.Cancel("duplicate folio issued in error"))
	require.NoError(t, store.UpdateContract(ctx, contract))

	retrieved, err := store.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractCancelled, retrieved.Status)
	assert.Equal(t, "duplicate folio issued in error", retrieved.CancelReason)
}

// =============================================================================
// Notification Tests
// =============================================================================

func TestNotificationLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "mod-1", domain.RoleModerator)

	n := domain.NewNotification(user.ID, "req_abc", domain.NotifySubmitted, "Request req_abc submitted for review")
	require.NoError(t, store.CreateNotification(ctx, n))

	list, err := store.ListNotificationsByRecipient(ctx, user.ID, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	assert.Equal(t, domain.NotifySubmitted, list[0].Kind)

	require.NoError(t, store.MarkNotificationRead(ctx, n.ID))

	list, err = store.ListNotificationsByRecipient(ctx, user.ID, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx_Commit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")

	err := store.WithTx(ctx, func(tx Store) error {
		inUse, err := tx.FolioInUse(ctx, "A-100", "")
		if err != nil {
			return err
		}
		require.False(t, inUse)
		return tx.CreateContract(ctx, domain.NewContract("A-100", client.ID, dev.ID, ""))
	})
	require.NoError(t, err)

	_, err = store.GetContractByFolio(ctx, "A-100")
	require.NoError(t, err)
}

func TestWithTx_Rollback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	client := createTestClient(t, store, "cli-1")
	dev := createTestDevelopment(t, store, "dev-1")

	err := store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateContract(ctx, domain.NewContract("A-100", client.ID, dev.ID, "")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	_, err = store.GetContractByFolio(ctx, "A-100")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
