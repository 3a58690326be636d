package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/agritrack/internal/dbx"
	"github.com/dmitrijs2005/agritrack/internal/server/artifacts"
	"github.com/dmitrijs2005/agritrack/internal/server/forecast"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/commodities"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/products"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _ := newSQLMock(t)
	return db
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- repositories ---

type fakeUsersRepo struct {
	existsOut bool
	existsErr error

	createErr error
	created   *models.User

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "42"
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.existsOut, f.existsErr
}

type fakeProductsRepo struct {
	mu sync.Mutex

	createCalls  int
	created      *models.Product
	createErr    error
	beforeCreate func()

	updateOwner string
	updateOut   *models.Product
	updateErr   error

	getOut  *models.Product
	getErr  error
	listOut []*models.Product
	listErr error
	cats    []models.ProductCategory
	catsErr error
}

func (f *fakeProductsRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.CreatedAt = time.Now()
	f.created = p
	return p, nil
}

func (f *fakeProductsRepo) Update(ctx context.Context, productID, owner string, patch models.ProductPatch) (*models.Product, error) {
	f.updateOwner = owner
	return f.updateOut, f.updateErr
}

func (f *fakeProductsRepo) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	return f.getOut, f.getErr
}

func (f *fakeProductsRepo) List(ctx context.Context) ([]*models.Product, error) {
	return f.listOut, f.listErr
}

func (f *fakeProductsRepo) Categories(ctx context.Context) ([]models.ProductCategory, error) {
	return f.cats, f.catsErr
}

type fakeCommoditiesRepo struct {
	out []models.CommodityType
	err error
}

func (f *fakeCommoditiesRepo) List(ctx context.Context) ([]models.CommodityType, error) {
	return f.out, f.err
}

type fakeRevocations struct {
	revoked []models.Revocation
	err     error
}

func (f *fakeRevocations) Revoke(ctx context.Context, r models.Revocation) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, r)
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	for _, r := range f.revoked {
		if r.TokenID == tokenID {
			return true, nil
		}
	}
	return false, f.err
}

func (f *fakeRevocations) PurgeExpired(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeRepoManager struct {
	users       *fakeUsersRepo
	products    *fakeProductsRepo
	commodities *fakeCommoditiesRepo
	revocations *fakeRevocations

	usersDB dbx.DBTX
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	m.usersDB = db
	return m.users
}
func (m *fakeRepoManager) Products(dbx.DBTX) products.Repository       { return m.products }
func (m *fakeRepoManager) Commodities(dbx.DBTX) commodities.Repository { return m.commodities }
func (m *fakeRepoManager) Revocations(dbx.DBTX) revocations.Repository { return m.revocations }

// --- collaborators ---

type fakeHasher struct {
	hashErr    error
	compareErr error
}

func (f *fakeHasher) Hash(ctx context.Context, pw string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + pw, nil
}

func (f *fakeHasher) Compare(ctx context.Context, hash, pw string) error { return f.compareErr }

type fakeTokens struct {
	err    error
	issued []string
}

func (f *fakeTokens) Issue(userID, email, role string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, userID+"|"+email+"|"+role)
	return "token-for-" + email, nil
}

// fakeStore records the order of events relative to the products repo.
type fakeStore struct {
	url   string
	err   error
	delay time.Duration
	puts  []artifacts.Artifact
	done  bool
}

func (f *fakeStore) Put(ctx context.Context, a artifacts.Artifact) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.puts = append(f.puts, a)
	f.done = true
	return f.url, f.err
}

type fakePredictor struct {
	calls int
	out   json.RawMessage
	err   error
	got   forecast.Commodity
}

func (f *fakePredictor) Predict(ctx context.Context, c forecast.Commodity) (json.RawMessage, error) {
	f.calls++
	f.got = c
	return f.out, f.err
}
