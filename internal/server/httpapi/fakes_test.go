package httpapi

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/auth"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
	"github.com/dmitrijs2005/agritrack/internal/server/services"
)

const testSecret = "test-secret"

type fakeUsers struct {
	signupIn  services.SignupInput
	signupOut string
	signupErr error

	loginOut *services.LoginResult
	loginErr error

	loggedOut []*auth.Identity
	logoutErr error
}

func (f *fakeUsers) Signup(ctx context.Context, in services.SignupInput) (string, error) {
	f.signupIn = in
	return f.signupOut, f.signupErr
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeUsers) Logout(ctx context.Context, id *auth.Identity) error {
	f.loggedOut = append(f.loggedOut, id)
	return f.logoutErr
}

type fakeProducts struct {
	createOwner string
	createIn    services.CreateProductInput
	createCalls int
	createErr   error

	updateOwner string
	updateID    string
	updatePatch models.ProductPatch
	updateErr   error

	listOut []*models.Product
	getOut  *models.Product
	getErr  error
	cats    []models.ProductCategory
}

func (f *fakeProducts) Create(ctx context.Context, owner string, in services.CreateProductInput) (*models.Product, error) {
	f.createCalls++
	f.createOwner = owner
	f.createIn = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	p := &models.Product{ProductID: in.ProductID, ProductName: in.ProductName, Owner: owner}
	if in.Artifact != nil {
		p.ImageURL = "http://s3/agritrack/" + in.Artifact.Name
	}
	return p, nil
}

func (f *fakeProducts) Update(ctx context.Context, owner, productID string, patch models.ProductPatch) (*models.Product, error) {
	f.updateOwner, f.updateID, f.updatePatch = owner, productID, patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Product{ProductID: productID, Owner: owner}, nil
}

func (f *fakeProducts) List(ctx context.Context) ([]*models.Product, error) {
	return f.listOut, nil
}

func (f *fakeProducts) Get(ctx context.Context, productID string) (*models.Product, error) {
	return f.getOut, f.getErr
}

func (f *fakeProducts) Categories(ctx context.Context) ([]models.ProductCategory, error) {
	return f.cats, nil
}

type fakeForecast struct {
	types      []models.CommodityType
	predictOut json.RawMessage
	predictErr error
	label      string
}

func (f *fakeForecast) Types(ctx context.Context) ([]models.CommodityType, error) {
	return f.types, nil
}

func (f *fakeForecast) Predict(ctx context.Context, label string) (json.RawMessage, error) {
	f.label = label
	return f.predictOut, f.predictErr
}

type fakeRevocationList struct {
	mu      sync.Mutex
	revoked map[string]bool
	err     error
}

func (f *fakeRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[tokenID], f.err
}

type testEnv struct {
	srv      *Server
	tokens   *auth.TokenService
	revs     *fakeRevocationList
	users    *fakeUsers
	products *fakeProducts
	forecast *fakeForecast
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		tokens:   auth.NewTokenService([]byte(testSecret), time.Hour),
		revs:     &fakeRevocationList{revoked: map[string]bool{}},
		users:    &fakeUsers{},
		products: &fakeProducts{},
		forecast: &fakeForecast{},
	}
	gate := NewGate(e.tokens, e.revs, logging.Nop())
	e.srv = NewServer(Options{
		Address:        "127.0.0.1:0",
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadSize:  1 << 20,
	}, gate, e.users, e.products, e.forecast, logging.Nop())
	return e
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := e.tokens.Issue("1", email, "farmer")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}
