// Package httpapi exposes the shop over JSON/HTTP under /api/v1.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type AuthService interface {
	Login(ctx context.Context, userName, password string) (*models.LoginResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error)
	IsUniqueUser(ctx context.Context, userName string) (bool, error)
	Authenticate(ctx context.Context, token string) (*models.TokenClaims, error)
}

type UserService interface {
	List(ctx context.Context) ([]*models.UserProfile, error)
	Get(ctx context.Context, id string) (*models.UserProfile, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type ProductService interface {
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Page(ctx context.Context, pageNumber, pageSize int) (*models.Page[*models.Product], error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error)
	Search(ctx context.Context, term string) ([]*models.Product, error)
	Create(ctx context.Context, in models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, in models.ProductInput) error
	Delete(ctx context.Context, id int64) error
	Buy(ctx context.Context, name string, quantity int) (string, error)
}

type Options struct {
	Auth       AuthService
	Users      UserService
	Categories CategoryService
	Products   ProductService
	Metrics    *metrics.Metrics
	Logger     logging.Logger
	// HideLoginFailureReason reports every rejected login as invalid
	// credentials.
	HideLoginFailureReason bool
	RequestTimeout         time.Duration
}

type Server struct {
	auth       AuthService
	users      UserService
	categories CategoryService
	products   ProductService
	metrics    *metrics.Metrics
	log        logging.Logger
	hideReason bool
}

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(opts Options) http.Handler {
	s := &Server{
		auth:       opts.Auth,
		users:      opts.Users,
		categories: opts.Categories,
		products:   opts.Products,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		hideReason: opts.HideLoginFailureReason,
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.log == nil {
		s.log = logging.Nop{}
	}
	s.log = s.log.With("module", "http")

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	admin := func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(requireRole(common.RoleAdmin))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/", s.register)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Get("/", s.listUsers)
				r.Get("/{userID}", s.getUser)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Get("/{categoryID}", s.getCategory)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/", s.createCategory)
				r.Patch("/{categoryID}", s.updateCategory)
				r.Delete("/{categoryID}", s.deleteCategory)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Get("/paged", s.pagedProducts)
			r.Get("/{productID}", s.getProduct)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/", s.createProduct)
				r.Get("/category/{categoryID}", s.productsByCategory)
				r.Get("/search/{term}", s.searchProducts)
				r.Patch("/buy/{name}/{quantity}", s.buyProduct)
				r.Put("/{productID}", s.updateProduct)
				r.Delete("/{productID}", s.deleteProduct)
			})
		})
	})

	return r
}
