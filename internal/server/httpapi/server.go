// Package httpapi is the gateway's HTTP transport: routing, the
// Authorization Gate, request decoding and error responses.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/auth"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
	"github.com/dmitrijs2005/agritrack/internal/server/services"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type UserService interface {
	Signup(ctx context.Context, in services.SignupInput) (string, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, id *auth.Identity) error
}

type ProductService interface {
	Create(ctx context.Context, owner string, in services.CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, owner, productID string, patch models.ProductPatch) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, productID string) (*models.Product, error)
	Categories(ctx context.Context) ([]models.ProductCategory, error)
}

type ForecastService interface {
	Types(ctx context.Context) ([]models.CommodityType, error)
	Predict(ctx context.Context, label string) (json.RawMessage, error)
}

type Options struct {
	Address        string
	AllowedOrigins []string
	MaxUploadSize  int64
	// WriteTimeout must outlast the prediction upstream timeout.
	WriteTimeout time.Duration
	AccessLog    io.Writer
}

type Server struct {
	opts     Options
	router   *mux.Router
	gate     *Gate
	users    UserService
	products ProductService
	forecast ForecastService
	logger   logging.Logger
}

func NewServer(opts Options, gate *Gate, us UserService, ps ProductService, fs ForecastService, l logging.Logger) *Server {
	if opts.AccessLog == nil {
		opts.AccessLog = io.Discard
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 60 * time.Second
	}
	s := &Server{
		opts:     opts,
		router:   mux.NewRouter(),
		gate:     gate,
		users:    us,
		products: ps,
		forecast: fs,
		logger:   l.With("module", "http_server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	gated := s.gate.Middleware

	authRouter := s.router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)

	forecastRouter := s.router.PathPrefix("/forecast").Subrouter()
	forecastRouter.Use(gated)
	forecastRouter.HandleFunc("/get-allTypes", s.handleCommodityTypes).Methods(http.MethodGet)
	forecastRouter.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)

	productsRouter := s.router.PathPrefix("/products").Subrouter()
	productsRouter.HandleFunc("", s.handleListProducts).Methods(http.MethodGet)
	productsRouter.HandleFunc("/", s.handleListProducts).Methods(http.MethodGet)
	productsRouter.HandleFunc("/product/{productId}", s.handleGetProduct).Methods(http.MethodGet)
	productsRouter.HandleFunc("/get-products-categories", s.handleCategories).Methods(http.MethodGet)
	productsRouter.Handle("/post-products", gated(http.HandlerFunc(s.handleCreateProduct))).Methods(http.MethodPost)
	productsRouter.Handle("/edit-product/{productId}", gated(http.HandlerFunc(s.handleUpdateProduct))).Methods(http.MethodPut)
}

// Handler returns the router wrapped with CORS and the access log.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)
	return handlers.CombinedLoggingHandler(s.opts.AccessLog, cors(s.router))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
