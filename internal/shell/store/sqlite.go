package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ventaro/deedflow/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Interface Delegation
// =============================================================================

func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, s.db, user)
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return getUser(ctx, s.db, id)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return getUserByEmail(ctx, s.db, email)
}

func (s *SQLiteStore) ListManagers(ctx context.Context) ([]domain.User, error) {
	return listManagers(ctx, s.db)
}

func (s *SQLiteStore) CreateClient(ctx context.Context, client *domain.Client) error {
	return createClient(ctx, s.db, client)
}

func (s *SQLiteStore) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return getClient(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateClient(ctx context.Context, client *domain.Client) error {
	return updateClient(ctx, s.db, client)
}

func (s *SQLiteStore) ListClients(ctx context.Context, opts ListOptions) ([]domain.Client, error) {
	return listClients(ctx, s.db, opts)
}

func (s *SQLiteStore) CountActiveContractsByClient(ctx context.Context, clientID string) (int, error) {
	return countActiveContractsByClient(ctx, s.db, clientID)
}

func (s *SQLiteStore) CreateDevelopment(ctx context.Context, dev *domain.Development) error {
	return createDevelopment(ctx, s.db, dev)
}

func (s *SQLiteStore) GetDevelopment(ctx context.Context, id string) (*domain.Development, error) {
	return getDevelopment(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateDevelopment(ctx context.Context, dev *domain.Development) error {
	return updateDevelopment(ctx, s.db, dev)
}

func (s *SQLiteStore) ListDevelopments(ctx context.Context, opts ListOptions) ([]domain.Development, error) {
	return listDevelopments(ctx, s.db, opts)
}

func (s *SQLiteStore) CreateRequest(ctx context.Context, req *domain.Request) error {
	return createRequest(ctx, s.db, req)
}

func (s *SQLiteStore) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	return getRequest(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateRequest(ctx context.Context, req *domain.Request) error {
	return updateRequest(ctx, s.db, req)
}

func (s *SQLiteStore) ListRequests(ctx context.Context, opts ListOptions) ([]domain.Request, error) {
	return listRequests(ctx, s.db, opts)
}

func (s *SQLiteStore) ListRequestsByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Request, error) {
	return listRequestsByOwner(ctx, s.db, ownerID, opts)
}

func (s *SQLiteStore) CreateContract(ctx context.Context, contract *domain.Contract) error {
	return createContract(ctx, s.db, contract)
}

func (s *SQLiteStore) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	return getContract(ctx, s.db, id)
}

func (s *SQLiteStore) GetContractByFolio(ctx context.Context, folio string) (*domain.Contract, error) {
	return getContractByFolio(ctx, s.db, folio)
}

func (s *SQLiteStore) UpdateContract(ctx context.Context, contract *domain.Contract) error {
	return updateContract(ctx, s.db, contract)
}

func (s *SQLiteStore) ListContracts(ctx context.Context, opts ListOptions) ([]domain.Contract, error) {
	return listContracts(ctx, s.db, opts)
}

func (s *SQLiteStore) FolioInUse(ctx context.Context, folio, excludeID string) (bool, error) {
	return folioInUse(ctx, s.db, folio, excludeID)
}

func (s *SQLiteStore) CreateNotification(ctx context.Context, n *domain.Notification) error {
	return createNotification(ctx, s.db, n)
}

func (s *SQLiteStore) ListNotificationsByRecipient(ctx context.Context, recipientID string, opts ListOptions) ([]domain.Notification, error) {
	return listNotificationsByRecipient(ctx, s.db, recipientID, opts)
}

func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	return markNotificationRead(ctx, s.db, id)
}

// WithTx runs fn inside a transaction, rolling back on any error.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	return createUser(ctx, s.tx, user)
}

func (s *txSQLiteStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return getUser(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return getUserByEmail(ctx, s.tx, email)
}

func (s *txSQLiteStore) ListManagers(ctx context.Context) ([]domain.User, error) {
	return listManagers(ctx, s.tx)
}

func (s *txSQLiteStore) CreateClient(ctx context.Context, client *domain.Client) error {
	return createClient(ctx, s.tx, client)
}

func (s *txSQLiteStore) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return getClient(ctx, s.tx, id)
}

func (s *txSQLiteStore) UpdateClient(ctx context.Context, client *domain.Client) error {
	return updateClient(ctx, s.tx, client)
}

func (s *txSQLiteStore) ListClients(ctx context.Context, opts ListOptions) ([]domain.Client, error) {
	return listClients(ctx, s.tx, opts)
}

func (s *txSQLiteStore) CountActiveContractsByClient(ctx context.Context, clientID string) (int, error) {
	return countActiveContractsByClient(ctx, s.tx, clientID)
}

func (s *txSQLiteStore) CreateDevelopment(ctx context.Context, dev *domain.Development) error {
	return createDevelopment(ctx, s.tx, dev)
}

func (s *txSQLiteStore) GetDevelopment(ctx context.Context, id string) (*domain.Development, error) {
	return getDevelopment(ctx, s.tx, id)
}

func (s *txSQLiteStore) UpdateDevelopment(ctx context.Context, dev *domain.Development) error {
	return updateDevelopment(ctx, s.tx, dev)
}

func (s *txSQLiteStore) ListDevelopments(ctx context.Context, opts ListOptions) ([]domain.Development, error) {
	return listDevelopments(ctx, s.tx, opts)
}

func (s *txSQLiteStore) CreateRequest(ctx context.Context, req *domain.Request) error {
	return createRequest(ctx, s.tx, req)
}

func (s *txSQLiteStore) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	return getRequest(ctx, s.tx, id)
}

func (s *txSQLiteStore) UpdateRequest(ctx context.Context, req *domain.Request) error {
	return updateRequest(ctx, s.tx, req)
}

func (s *txSQLiteStore) ListRequests(ctx context.Context, opts ListOptions) ([]domain.Request, error) {
	return listRequests(ctx, s.tx, opts)
}

func (s *txSQLiteStore) ListRequestsByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]domain.Request, error) {
	return listRequestsByOwner(ctx, s.tx, ownerID, opts)
}

func (s *txSQLiteStore) CreateContract(ctx context.Context, contract *domain.Contract) error {
	return createContract(ctx, s.tx, contract)
}

func (s *txSQLiteStore) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	return getContract(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetContractByFolio(ctx context.Context, folio string) (*domain.Contract, error) {
	return getContractByFolio(ctx, s.tx, folio)
}

func (s *txSQLiteStore) UpdateContract(ctx context.Context, contract *domain.Contract) error {
	return updateContract(ctx, s.tx, contract)
}

func (s *txSQLiteStore) ListContracts(ctx context.Context, opts ListOptions) ([]domain.Contract, error) {
	return listContracts(ctx, s.tx, opts)
}

func (s *txSQLiteStore) FolioInUse(ctx context.Context, folio, excludeID string) (bool, error) {
	return folioInUse(ctx, s.tx, folio, excludeID)
}

func (s *txSQLiteStore) CreateNotification(ctx context.Context, n *domain.Notification) error {
	return createNotification(ctx, s.tx, n)
}

func (s *txSQLiteStore) ListNotificationsByRecipient(ctx context.Context, recipientID string, opts ListOptions) ([]domain.Notification, error) {
	return listNotificationsByRecipient(ctx, s.tx, recipientID, opts)
}

func (s *txSQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	return markNotificationRead(ctx, s.tx, id)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// User Operations
// =============================================================================

type userRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Role         string `db:"role"`
	PasswordHash string `db:"password_hash"`
}

func createUser(ctx context.Context, exec executor, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, role, password_hash)
		VALUES (:id, :name, :email, :role, :password_hash)`

	_, err := exec.NamedExecContext(ctx, query, map[string]any{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"role":          string(user.Role),
		"password_hash": user.PasswordHash,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.id") {
			return NewStoreError("CreateUser", "user", user.ID, "user with this ID already exists", ErrDuplicateID)
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return NewStoreError("CreateUser", "user", user.ID, "user with this email already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateUser", "user", user.ID, err.Error(), err)
	}
	return nil
}

func getUser(ctx context.Context, exec executor, id string) (*domain.User, error) {
	var row userRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetUser", "user", id, "user not found", ErrNotFound)
		}
		return nil, NewStoreError("GetUser", "user", id, err.Error(), err)
	}
	return rowToUser(&row), nil
}

func getUserByEmail(ctx context.Context, exec executor, email string) (*domain.User, error) {
	var row userRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetUserByEmail", "user", email, "user not found", ErrNotFound)
		}
		return nil, NewStoreError("GetUserByEmail", "user", email, err.Error(), err)
	}
	return rowToUser(&row), nil
}

func listManagers(ctx context.Context, exec executor) ([]domain.User, error) {
	var rows []userRow
	query := `SELECT * FROM users WHERE role IN ('moderator', 'senior', 'owner', 'admin') ORDER BY id`
	if err := exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, NewStoreError("ListManagers", "user", "", err.Error(), err)
	}
	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rowToUser(&rows[i]))
	}
	return users, nil
}

func rowToUser(row *userRow) *domain.User {
	return &domain.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         domain.ParseRole(row.Role),
		PasswordHash: row.PasswordHash,
	}
}

// =============================================================================
// Client Operations
// =============================================================================

type clientRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	BirthDate     string `db:"birth_date"`
	BirthPlace    string `db:"birth_place"`
	Nationality   string `db:"nationality"`
	MaritalStatus string `db:"marital_status"`
	Occupation    string `db:"occupation"`
	Gender        string `db:"gender"`
	Phone         string `db:"phone"`
	Email         string `db:"email"`
	Address       string `db:"address"`
	TaxID         string `db:"tax_id"`
	IDNumber      string `db:"id_number"`
	Archived      bool   `db:"archived"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

func clientToMap(c *domain.Client) map[string]any {
	return map[string]any{
		"id":             c.ID,
		"name":           c.Name,
		"birth_date":     c.BirthDate,
		"birth_place":    c.BirthPlace,
		"nationality":    c.Nationality,
		"marital_status": c.MaritalStatus,
		"occupation":     c.Occupation,
		"gender":         c.Gender,
		"phone":          c.Phone,
		"email":          c.Email,
		"address":        c.Address,
		"tax_id":         c.TaxID,
		"id_number":      c.IDNumber,
		"archived":       c.Archived,
		"created_at":     c.CreatedAt.Format(time.RFC3339),
		"updated_at":     c.UpdatedAt.Format(time.RFC3339),
	}
}

func createClient(ctx context.Context, exec executor, client *domain.Client) error {
	query := `
		INSERT INTO clients (
			id, name, birth_date, birth_place, nationality, marital_status,
			occupation, gender, phone, email, address, tax_id, id_number,
			archived, created_at, updated_at
		) VALUES (
			:id, :name, :birth_date, :birth_place, :nationality, :marital_status,
			:occupation, :gender, :phone, :email, :address, :tax_id, :id_number,
			:archived, :created_at, :updated_at
		)`

	if _, err := exec.NamedExecContext(ctx, query, clientToMap(client)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: clients.id") {
			return NewStoreError("CreateClient", "client", client.ID, "client with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateClient", "client", client.ID, err.Error(), err)
	}
	return nil
}

func getClient(ctx context.Context, exec executor, id string) (*domain.Client, error) {
	var row clientRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM clients WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetClient", "client", id, "client not found", ErrNotFound)
		}
		return nil, NewStoreError("GetClient", "client", id, err.Error(), err)
	}
	return rowToClient(&row), nil
}

func updateClient(ctx context.Context, exec executor, client *domain.Client) error {
	query := `
		UPDATE clients SET
			name = :name, birth_date = :birth_date, birth_place = :birth_place,
			nationality = :nationality, marital_status = :marital_status,
			occupation = :occupation, gender = :gender, phone = :phone,
			email = :email, address = :address, tax_id = :tax_id,
			id_number = :id_number, archived = :archived, updated_at = :updated_at
		WHERE id = :id`

	res, err := exec.NamedExecContext(ctx, query, clientToMap(client))
	if err != nil {
		return NewStoreError("UpdateClient", "client", client.ID, err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("UpdateClient", "client", client.ID, "client not found", ErrNotFound)
	}
	return nil
}

func listClients(ctx context.Context, exec executor, opts ListOptions) ([]domain.Client, error) {
	opts = opts.Normalize()
	var rows []clientRow
	query := `SELECT * FROM clients ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListClients", "client", "", err.Error(), err)
	}
	clients := make([]domain.Client, 0, len(rows))
	for i := range rows {
		clients = append(clients, *rowToClient(&rows[i]))
	}
	return clients, nil
}

func countActiveContractsByClient(ctx context.Context, exec executor, clientID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM contracts WHERE client_id = ? AND status = ?`
	if err := exec.GetContext(ctx, &count, query, clientID, int(domain.ContractActive)); err != nil {
		return 0, NewStoreError("CountActiveContractsByClient", "contract", clientID, err.Error(), err)
	}
	return count, nil
}

func rowToClient(row *clientRow) *domain.Client {
	return &domain.Client{
		ID:            row.ID,
		Name:          row.Name,
		BirthDate:     row.BirthDate,
		BirthPlace:    row.BirthPlace,
		Nationality:   row.Nationality,
		MaritalStatus: row.MaritalStatus,
		Occupation:    row.Occupation,
		Gender:        row.Gender,
		Phone:         row.Phone,
		Email:         row.Email,
		Address:       row.Address,
		TaxID:         row.TaxID,
		IDNumber:      row.IDNumber,
		Archived:      row.Archived,
		CreatedAt:     parseTime(row.CreatedAt),
		UpdatedAt:     parseTime(row.UpdatedAt),
	}
}

// =============================================================================
// Development Operations
// =============================================================================

type developmentRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Location     string `db:"location"`
	Lot          string `db:"lot"`
	Block        string `db:"block"`
	AreaM2       string `db:"area_m2"`
	Price        string `db:"price"`
	DeedNumber   string `db:"deed_number"`
	DeedDate     string `db:"deed_date"`
	NotaryName   string `db:"notary_name"`
	NotaryNumber string `db:"notary_number"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func developmentToMap(d *domain.Development) map[string]any {
	return map[string]any{
		"id":            d.ID,
		"name":          d.Name,
		"location":      d.Location,
		"lot":           d.Lot,
		"block":         d.Block,
		"area_m2":       d.AreaM2,
		"price":         d.Price,
		"deed_number":   d.DeedNumber,
		"deed_date":     d.DeedDate,
		"notary_name":   d.NotaryName,
		"notary_number": d.NotaryNumber,
		"created_at":    d.CreatedAt.Format(time.RFC3339),
		"updated_at":    d.UpdatedAt.Format(time.RFC3339),
	}
}

func createDevelopment(ctx context.Context, exec executor, dev *domain.Development) error {
	query := `
		INSERT INTO developments (
			id, name, location, lot, block, area_m2, price, deed_number,
			deed_date, notary_name, notary_number, created_at, updated_at
		) VALUES (
			:id, :name, :location, :lot, :block, :area_m2, :price, :deed_number,
			:deed_date, :notary_name, :notary_number, :created_at, :updated_at
		)`

	if _, err := exec.NamedExecContext(ctx, query, developmentToMap(dev)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: developments.id") {
			return NewStoreError("CreateDevelopment", "development", dev.ID, "development with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateDevelopment", "development", dev.ID, err.Error(), err)
	}
	return nil
}

func getDevelopment(ctx context.Context, exec executor, id string) (*domain.Development, error) {
	var row developmentRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM developments WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetDevelopment", "development", id, "development not found", ErrNotFound)
		}
		return nil, NewStoreError("GetDevelopment", "development", id, err.Error(), err)
	}
	return rowToDevelopment(&row), nil
}

func updateDevelopment(ctx context.Context, exec executor, dev *domain.Development) error {
	query := `
		UPDATE developments SET
			name = :name, location = :location, lot = :lot, block = :block,
			area_m2 = :area_m2, price = :price, deed_number = :deed_number,
			deed_date = :deed_date, notary_name = :notary_name,
			notary_number = :notary_number, updated_at = :updated_at
		WHERE id = :id`

	res, err := exec.NamedExecContext(ctx, query, developmentToMap(dev))
	if err != nil {
		return NewStoreError("UpdateDevelopment", "development", dev.ID, err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("UpdateDevelopment", "development", dev.ID, "development not found", ErrNotFound)
	}
	return nil
}

func listDevelopments(ctx context.Context, exec executor, opts ListOptions) ([]domain.Development, error) {
	opts = opts.Normalize()
	var rows []developmentRow
	query := `SELECT * FROM developments ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListDevelopments", "development", "", err.Error(), err)
	}
	devs := make([]domain.Development, 0, len(rows))
	for i := range rows {
		devs = append(devs, *rowToDevelopment(&rows[i]))
	}
	return devs, nil
}

func rowToDevelopment(row *developmentRow) *domain.Development {
	return &domain.Development{
		ID:           row.ID,
		Name:         row.Name,
		Location:     row.Location,
		Lot:          row.Lot,
		Block:        row.Block,
		AreaM2:       row.AreaM2,
		Price:        row.Price,
		DeedNumber:   row.DeedNumber,
		DeedDate:     row.DeedDate,
		NotaryName:   row.NotaryName,
		NotaryNumber: row.NotaryNumber,
		CreatedAt:    parseTime(row.CreatedAt),
		UpdatedAt:    parseTime(row.UpdatedAt),
	}
}

// =============================================================================
// Request Operations
// =============================================================================

type requestRow struct {
	ID                 string  `db:"id"`
	OwnerID            string  `db:"owner_id"`
	ContractID         string  `db:"contract_id"`
	State              string  `db:"state"`
	ClientName         string  `db:"client_name"`
	BirthDate          string  `db:"birth_date"`
	BirthPlace         string  `db:"birth_place"`
	Nationality        string  `db:"nationality"`
	MaritalStatus      string  `db:"marital_status"`
	Occupation         string  `db:"occupation"`
	Gender             string  `db:"gender"`
	Phone              string  `db:"phone"`
	Email              string  `db:"email"`
	Address            string  `db:"address"`
	IdentificationType string  `db:"identification_type"`
	NationalIDNumber   string  `db:"national_id_number"`
	IDNumber           string  `db:"id_number"`
	TaxID              string  `db:"tax_id"`
	DevelopmentID      string  `db:"development_id"`
	Price              string  `db:"price"`
	DownPayment        string  `db:"down_payment"`
	MonthlyPayment     string  `db:"monthly_payment"`
	TermMonths         int     `db:"term_months"`
	ContractDate       string  `db:"contract_date"`
	Executor           *string `db:"executor"`
	AnnualPayment      *string `db:"annual_payment"`
	StateActor         string  `db:"state_actor"`
	StateReason        string  `db:"state_reason"`
	StateChangedAt     string  `db:"state_changed_at"`
	CreatedAt          string  `db:"created_at"`
	UpdatedAt          string  `db:"updated_at"`
}

func requestToMap(req *domain.Request) (map[string]any, error) {
	executorJSON, err := json.Marshal(req.Executor)
	if err != nil {
		return nil, err
	}
	annualJSON, err := json.Marshal(req.AnnualPayment)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":                  req.ID,
		"owner_id":            req.OwnerID,
		"contract_id":         req.ContractID,
		"state":               string(req.State),
		"client_name":         req.ClientName,
		"birth_date":          req.BirthDate,
		"birth_place":         req.BirthPlace,
		"nationality":         req.Nationality,
		"marital_status":      req.MaritalStatus,
		"occupation":          req.Occupation,
		"gender":              req.Gender,
		"phone":               req.Phone,
		"email":               req.Email,
		"address":             req.Address,
		"identification_type": req.IdentificationType,
		"national_id_number":  req.NationalIDNumber,
		"id_number":           req.IDNumber,
		"tax_id":              req.TaxID,
		"development_id":      req.DevelopmentID,
		"price":               req.Price,
		"down_payment":        req.DownPayment,
		"monthly_payment":     req.MonthlyPayment,
		"term_months":         req.TermMonths,
		"contract_date":       req.ContractDate,
		"executor":            string(executorJSON),
		"annual_payment":      string(annualJSON),
		"state_actor":         req.StateActor,
		"state_reason":        req.StateReason,
		"state_changed_at":    req.StateChangedAt.Format(time.RFC3339),
		"created_at":          req.CreatedAt.Format(time.RFC3339),
		"updated_at":          req.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func createRequest(ctx context.Context, exec executor, req *domain.Request) error {
	row, err := requestToMap(req)
	if err != nil {
		return NewStoreError("CreateRequest", "request", req.ID, "failed to serialize conditional groups", ErrInvalidData)
	}

	query := `
		INSERT INTO requests (
			id, owner_id, contract_id, state, client_name, birth_date,
			birth_place, nationality, marital_status, occupation, gender,
			phone, email, address, identification_type, national_id_number,
			id_number, tax_id, development_id, price, down_payment,
			monthly_payment, term_months, contract_date, executor,
			annual_payment, state_actor, state_reason, state_changed_at,
			created_at, updated_at
		) VALUES (
			:id, :owner_id, :contract_id, :state, :client_name, :birth_date,
			:birth_place, :nationality, :marital_status, :occupation, :gender,
			:phone, :email, :address, :identification_type, :national_id_number,
			:id_number, :tax_id, :development_id, :price, :down_payment,
			:monthly_payment, :term_months, :contract_date, :executor,
			:annual_payment, :state_actor, :state_reason, :state_changed_at,
			:created_at, :updated_at
		)`

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: requests.id") {
			return NewStoreError("CreateRequest", "request", req.ID, "request with this ID already exists", ErrDuplicateID)
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return NewStoreError("CreateRequest", "request", req.ID, "owner does not exist", ErrForeignKey)
		}
		return NewStoreError("CreateRequest", "request", req.ID, err.Error(), err)
	}
	return nil
}

func getRequest(ctx context.Context, exec executor, id string) (*domain.Request, error) {
	var row requestRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM requests WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetRequest", "request", id, "request not found", ErrNotFound)
		}
		return nil, NewStoreError("GetRequest", "request", id, err.Error(), err)
	}
	return rowToRequest(&row)
}

func updateRequest(ctx context.Context, exec executor, req *domain.Request) error {
	row, err := requestToMap(req)
	if err != nil {
		return NewStoreError("UpdateRequest", "request", req.ID, "failed to serialize conditional groups", ErrInvalidData)
	}

	query := `
		UPDATE requests SET
			owner_id = :owner_id, contract_id = :contract_id, state = :state,
			client_name = :client_name, birth_date = :birth_date,
			birth_place = :birth_place, nationality = :nationality,
			marital_status = :marital_status, occupation = :occupation,
			gender = :gender, phone = :phone, email = :email,
			address = :address, identification_type = :identification_type,
			national_id_number = :national_id_number, id_number = :id_number,
			tax_id = :tax_id, development_id = :development_id, price = :price,
			down_payment = :down_payment, monthly_payment = :monthly_payment,
			term_months = :term_months, contract_date = :contract_date,
			executor = :executor, annual_payment = :annual_payment,
			state_actor = :state_actor, state_reason = :state_reason,
			state_changed_at = :state_changed_at, updated_at = :updated_at
		WHERE id = :id`

	res, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdateRequest", "request", req.ID, err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("UpdateRequest", "request", req.ID, "request not found", ErrNotFound)
	}
	return nil
}

func listRequests(ctx context.Context, exec executor, opts ListOptions) ([]domain.Request, error) {
	opts = opts.Normalize()
	var rows []requestRow
	query := `SELECT * FROM requests ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListRequests", "request", "", err.Error(), err)
	}
	return rowsToRequests(rows)
}

func listRequestsByOwner(ctx context.Context, exec executor, ownerID string, opts ListOptions) ([]domain.Request, error) {
	opts = opts.Normalize()
	var rows []requestRow
	query := `SELECT * FROM requests WHERE owner_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := exec.SelectContext(ctx, &rows, query, ownerID, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListRequestsByOwner", "request", ownerID, err.Error(), err)
	}
	return rowsToRequests(rows)
}

func rowsToRequests(rows []requestRow) ([]domain.Request, error) {
	requests := make([]domain.Request, 0, len(rows))
	for i := range rows {
		req, err := rowToRequest(&rows[i])
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, nil
}

func rowToRequest(row *requestRow) (*domain.Request, error) {
	req := &domain.Request{
		ID:                 row.ID,
		OwnerID:            row.OwnerID,
		ContractID:         row.ContractID,
		State:              domain.RequestState(row.State),
		ClientName:         row.ClientName,
		BirthDate:          row.BirthDate,
		BirthPlace:         row.BirthPlace,
		Nationality:        row.Nationality,
		MaritalStatus:      row.MaritalStatus,
		Occupation:         row.Occupation,
		Gender:             row.Gender,
		Phone:              row.Phone,
		Email:              row.Email,
		Address:            row.Address,
		IdentificationType: row.IdentificationType,
		NationalIDNumber:   row.NationalIDNumber,
		IDNumber:           row.IDNumber,
		TaxID:              row.TaxID,
		DevelopmentID:      row.DevelopmentID,
		Price:              row.Price,
		DownPayment:        row.DownPayment,
		MonthlyPayment:     row.MonthlyPayment,
		TermMonths:         row.TermMonths,
		ContractDate:       row.ContractDate,
		StateActor:         row.StateActor,
		StateReason:        row.StateReason,
		StateChangedAt:     parseTime(row.StateChangedAt),
		CreatedAt:          parseTime(row.CreatedAt),
		UpdatedAt:          parseTime(row.UpdatedAt),
	}
	if row.Executor != nil && *row.Executor != "" {
		if err := json.Unmarshal([]byte(*row.Executor), &req.Executor); err != nil {
			return nil, NewStoreError("GetRequest", "request", row.ID, "failed to deserialize executor", ErrInvalidData)
		}
	}
	if row.AnnualPayment != nil && *row.AnnualPayment != "" {
		if err := json.Unmarshal([]byte(*row.AnnualPayment), &req.AnnualPayment); err != nil {
			return nil, NewStoreError("GetRequest", "request", row.ID, "failed to deserialize annual payment", ErrInvalidData)
		}
	}
	return req, nil
}

// =============================================================================
// Contract Operations
// =============================================================================

type contractRow struct {
	ID            string `db:"id"`
	Folio         string `db:"folio"`
	ClientID      string `db:"client_id"`
	DevelopmentID string `db:"development_id"`
	RequestID     string `db:"request_id"`
	Status        int    `db:"status"`
	Aggregate     string `db:"aggregate"`
	CancelReason  string `db:"cancel_reason"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
}

func contractToMap(c *domain.Contract) (map[string]any, error) {
	aggregateJSON, err := json.Marshal(c.Aggregate)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":             c.ID,
		"folio":          c.Folio,
		"client_id":      c.ClientID,
		"development_id": c.DevelopmentID,
		"request_id":     c.RequestID,
		"status":         int(c.Status),
		"aggregate":      string(aggregateJSON),
		"cancel_reason":  c.CancelReason,
		"created_at":     c.CreatedAt.Format(time.RFC3339),
		"updated_at":     c.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func createContract(ctx context.Context, exec executor, contract *domain.Contract) error {
	row, err := contractToMap(contract)
	if err != nil {
		return NewStoreError("CreateContract", "contract", contract.ID, "failed to serialize aggregate", ErrInvalidData)
	}

	query := `
		INSERT INTO contracts (
			id, folio, client_id, development_id, request_id, status,
			aggregate, cancel_reason, created_at, updated_at
		) VALUES (
			:id, :folio, :client_id, :development_id, :request_id, :status,
			:aggregate, :cancel_reason, :created_at, :updated_at
		)`

	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: contracts.folio") {
			return NewStoreError("CreateContract", "contract", contract.ID, "contract with this folio already exists", ErrDuplicateFolio)
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: contracts.id") {
			return NewStoreError("CreateContract", "contract", contract.ID, "contract with this ID already exists", ErrDuplicateID)
		}
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return NewStoreError("CreateContract", "contract", contract.ID, "client or development does not exist", ErrForeignKey)
		}
		return NewStoreError("CreateContract", "contract", contract.ID, err.Error(), err)
	}
	return nil
}

func getContract(ctx context.Context, exec executor, id string) (*domain.Contract, error) {
	var row contractRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM contracts WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetContract", "contract", id, "contract not found", ErrNotFound)
		}
		return nil, NewStoreError("GetContract", "contract", id, err.Error(), err)
	}
	return rowToContract(&row)
}

func getContractByFolio(ctx context.Context, exec executor, folio string) (*domain.Contract, error) {
	var row contractRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM contracts WHERE folio = ?`, domain.NormalizeFolio(folio))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetContractByFolio", "contract", folio, "contract not found", ErrNotFound)
		}
		return nil, NewStoreError("GetContractByFolio", "contract", folio, err.Error(), err)
	}
	return rowToContract(&row)
}

func updateContract(ctx context.Context, exec executor, contract *domain.Contract) error {
	row, err := contractToMap(contract)
	if err != nil {
		return NewStoreError("UpdateContract", "contract", contract.ID, "failed to serialize aggregate", ErrInvalidData)
	}

	query := `
		UPDATE contracts SET
			folio = :folio, client_id = :client_id,
			development_id = :development_id, request_id = :request_id,
			status = :status, aggregate = :aggregate,
			cancel_reason = :cancel_reason, updated_at = :updated_at
		WHERE id = :id`

	res, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: contracts.folio") {
			return NewStoreError("UpdateContract", "contract", contract.ID, "contract with this folio already exists", ErrDuplicateFolio)
		}
		return NewStoreError("UpdateContract", "contract", contract.ID, err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("UpdateContract", "contract", contract.ID, "contract not found", ErrNotFound)
	}
	return nil
}

func listContracts(ctx context.Context, exec executor, opts ListOptions) ([]domain.Contract, error) {
	opts = opts.Normalize()
	var rows []contractRow
	query := `SELECT * FROM contracts ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListContracts", "contract", "", err.Error(), err)
	}
	contracts := make([]domain.Contract, 0, len(rows))
	for i := range rows {
		c, err := rowToContract(&rows[i])
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, nil
}

func folioInUse(ctx context.Context, exec executor, folio, excludeID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM contracts WHERE folio = ? AND id != ?`
	if err := exec.GetContext(ctx, &count, query, domain.NormalizeFolio(folio), excludeID); err != nil {
		return false, NewStoreError("FolioInUse", "contract", folio, err.Error(), err)
	}
	return count > 0, nil
}

func rowToContract(row *contractRow) (*domain.Contract, error) {
	contract := &domain.Contract{
		ID:            row.ID,
		Folio:         row.Folio,
		ClientID:      row.ClientID,
		DevelopmentID: row.DevelopmentID,
		RequestID:     row.RequestID,
		Status:        domain.ContractStatus(row.Status),
		CancelReason:  row.CancelReason,
		CreatedAt:     parseTime(row.CreatedAt),
		UpdatedAt:     parseTime(row.UpdatedAt),
	}
	if row.Aggregate != "" {
		if err := json.Unmarshal([]byte(row.Aggregate), &contract.Aggregate); err != nil {
			return nil, NewStoreError("GetContract", "contract", row.ID, "failed to deserialize aggregate", ErrInvalidData)
		}
	}
	return contract, nil
}

// =============================================================================
// Notification Operations
// =============================================================================

type notificationRow struct {
	ID          string `db:"id"`
	RecipientID string `db:"recipient_id"`
	RequestID   string `db:"request_id"`
	Kind        string `db:"kind"`
	Body        string `db:"body"`
	IsRead      bool   `db:"is_read"`
	CreatedAt   string `db:"created_at"`
}

func createNotification(ctx context.Context, exec executor, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, request_id, kind, body, is_read, created_at)
		VALUES (:id, :recipient_id, :request_id, :kind, :body, :is_read, :created_at)`

	_, err := exec.NamedExecContext(ctx, query, map[string]any{
		"id":           n.ID,
		"recipient_id": n.RecipientID,
		"request_id":   n.RequestID,
		"kind":         string(n.Kind),
		"body":         n.Body,
		"is_read":      n.Read,
		"created_at":   n.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return NewStoreError("CreateNotification", "notification", n.ID, "recipient does not exist", ErrForeignKey)
		}
		return NewStoreError("CreateNotification", "notification", n.ID, err.Error(), err)
	}
	return nil
}

func listNotificationsByRecipient(ctx context.Context, exec executor, recipientID string, opts ListOptions) ([]domain.Notification, error) {
	opts = opts.Normalize()
	var rows []notificationRow
	query := `SELECT * FROM notifications WHERE recipient_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := exec.SelectContext(ctx, &rows, query, recipientID, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListNotificationsByRecipient", "notification", recipientID, err.Error(), err)
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Notification{
			ID:          row.ID,
			RecipientID: row.RecipientID,
			RequestID:   row.RequestID,
			Kind:        domain.NotificationKind(row.Kind),
			Body:        row.Body,
			Read:        row.IsRead,
			CreatedAt:   parseTime(row.CreatedAt),
		})
	}
	return out, nil
}

func markNotificationRead(ctx context.Context, exec executor, id string) error {
	res, err := exec.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("MarkNotificationRead", "notification", id, err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("MarkNotificationRead", "notification", id, "notification not found", ErrNotFound)
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
