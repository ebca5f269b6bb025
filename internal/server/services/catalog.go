package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/cache"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/repomanager"
)

// CacheTTL holds the two read cache profiles.
type CacheTTL struct {
	Short time.Duration
	Long  time.Duration
}

const (
	categoriesKeyPattern = "categories:*"
	productsKeyPattern   = "products:*"
)

// cached is a read-through helper: it returns the cached value for key or
// loads it, storing the result for ttl. Cache failures only cost a reload.
func cached[T any](ctx context.Context, c cache.Cache, log logging.Logger, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	err := cache.GetJSON(ctx, c, key, &v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn(ctx, "cache read failed", "key", key, "error", err)
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := cache.SetJSON(ctx, c, key, v, ttl); err != nil {
		log.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
	return v, nil
}

func invalidate(ctx context.Context, c cache.Cache, log logging.Logger, patterns ...string) {
	for _, p := range patterns {
		if err := c.DeleteByPattern(ctx, p); err != nil {
			log.Warn(ctx, "cache invalidation failed", "pattern", p, "error", err)
		}
	}
}

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	ttl         CacheTTL
	log         logging.Logger
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, ttl CacheTTL, log logging.Logger) *CategoryService {
	return &CategoryService{db: db, repomanager: m, cache: c, ttl: ttl, log: log.With("module", "categories")}
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return cached(ctx, s.cache, s.log, "categories:all", s.ttl.Long, func() ([]*models.Category, error) {
		return s.repomanager.Categories(s.db).List(ctx)
	})
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return cached(ctx, s.cache, s.log, fmt.Sprintf("categories:id:%d", id), s.ttl.Long, func() (*models.Category, error) {
		return s.repomanager.Categories(s.db).Get(ctx, id)
	})
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewReasonsError(common.ErrValidation, "category name required")
	}

	repo := s.repomanager.Categories(s.db)
	exists, err := repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: category %q", common.ErrConflict, name)
	}

	c, err := repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, categoriesKeyPattern)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.NewReasonsError(common.ErrValidation, "category name required")
	}
	if err := s.repomanager.Categories(s.db).Update(ctx, id, name); err != nil {
		return err
	}
	// Product listings carry the category name.
	invalidate(ctx, s.cache, s.log, categoriesKeyPattern, productsKeyPattern)
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Categories(s.db).Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.log, categoriesKeyPattern)
	return nil
}

type ProductService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	ttl         CacheTTL
	log         logging.Logger
}

func NewProductService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, ttl CacheTTL, log logging.Logger) *ProductService {
	return &ProductService{db: db, repomanager: m, cache: c, ttl: ttl, log: log.With("module", "products")}
}

func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	return cached(ctx, s.cache, s.log, "products:all", s.ttl.Short, func() ([]*models.Product, error) {
		return s.repomanager.Products(s.db).List(ctx)
	})
}

func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	return cached(ctx, s.cache, s.log, fmt.Sprintf("products:id:%d", id), s.ttl.Short, func() (*models.Product, error) {
		return s.repomanager.Products(s.db).Get(ctx, id)
	})
}

// TotalPages is the number of pages of size pageSize needed for total items.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Page returns page pageNumber (1-based) of the products ordered by id.
// Pages past the end, and empty pages, are common.ErrorNotFound.
func (s *ProductService) Page(ctx context.Context, pageNumber, pageSize int) (*models.Page[*models.Product], error) {
	if pageNumber < 1 || pageSize < 1 {
		return nil, common.NewReasonsError(common.ErrValidation, "pageNumber and pageSize must be positive")
	}

	key := fmt.Sprintf("products:page:%d:%d", pageNumber, pageSize)
	return cached(ctx, s.cache, s.log, key, s.ttl.Short, func() (*models.Page[*models.Product], error) {
		repo := s.repomanager.Products(s.db)

		total, err := repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		totalPages := TotalPages(total, pageSize)
		if pageNumber > totalPages {
			return nil, fmt.Errorf("%w: page %d of %d", common.ErrorNotFound, pageNumber, totalPages)
		}

		items, err := repo.ListPage(ctx, (pageNumber-1)*pageSize, pageSize)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: page %d is empty", common.ErrorNotFound, pageNumber)
		}

		return &models.Page[*models.Product]{
			PageNumber: pageNumber,
			PageSize:   pageSize,
			TotalPages: totalPages,
			Items:      items,
		}, nil
	})
}

func (s *ProductService) ListByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error) {
	return s.repomanager.Products(s.db).ListByCategory(ctx, categoryID)
}

func (s *ProductService) Search(ctx context.Context, term string) ([]*models.Product, error) {
	if strings.TrimSpace(term) == "" {
		return nil, common.NewReasonsError(common.ErrValidation, "search term required")
	}
	return s.repomanager.Products(s.db).Search(ctx, term)
}

func validateProductInput(in *models.ProductInput) error {
	var reasons []string
	if strings.TrimSpace(in.Name) == "" {
		reasons = append(reasons, "product name required")
	}
	if in.Price < 0 {
		reasons = append(reasons, "price cannot be negative")
	}
	if in.Stock < 0 {
		reasons = append(reasons, "stock cannot be negative")
	}
	if len(reasons) > 0 {
		return common.NewReasonsError(common.ErrValidation, reasons...)
	}
	return nil
}

func (s *ProductService) checkCategory(ctx context.Context, id int64) error {
	exists, err := s.repomanager.Categories(s.db).Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return common.NewReasonsError(common.ErrValidation, fmt.Sprintf("category %d does not exist", id))
	}
	return nil
}

// Create stores a new product. Names are unique ignoring case and the
// category must exist. Products without an image get the placeholder.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := validateProductInput(&in); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)

	repo := s.repomanager.Products(s.db)
	exists, err := repo.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: product %q", common.ErrConflict, in.Name)
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if in.ImgURL == "" {
		in.ImgURL = models.DefaultProductImageURL
	}

	p, err := repo.Create(ctx, &in)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.log, productsKeyPattern)
	return p, nil
}

// Update replaces the writable fields of product id. An unknown product is
// a validation failure, not a missing resource.
func (s *ProductService) Update(ctx context.Context, id int64, in models.ProductInput) error {
	if err := validateProductInput(&in); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)

	repo := s.repomanager.Products(s.db)
	exists, err := repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return common.NewReasonsError(common.ErrValidation, fmt.Sprintf("product %d does not exist", id))
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return err
	}
	if in.ImgURL == "" {
		in.ImgURL = models.DefaultProductImageURL
	}

	if err := repo.Update(ctx, id, &in); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.log, productsKeyPattern)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return common.NewReasonsError(common.ErrValidation, "product id required")
	}
	if err := s.repomanager.Products(s.db).Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.log, productsKeyPattern)
	return nil
}

// Buy takes quantity units of the named product out of stock and returns a
// confirmation message.
func (s *ProductService) Buy(ctx context.Context, name string, quantity int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || quantity <= 0 {
		return "", common.NewReasonsError(common.ErrValidation, "product name or quantity is not valid")
	}

	repo := s.repomanager.Products(s.db)
	exists, err := repo.ExistsByName(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: product %q", common.ErrorNotFound, name)
	}

	if err := repo.Buy(ctx, name, quantity); err != nil {
		if errors.Is(err, common.ErrInsufficientStock) {
			return "", fmt.Errorf("could not buy %d of product %q: %w", quantity, name, err)
		}
		return "", err
	}
	invalidate(ctx, s.cache, s.log, productsKeyPattern)

	units := "units"
	if quantity == 1 {
		units = "unit"
	}
	return fmt.Sprintf("purchased %d %s of product '%s'", quantity, units, name), nil
}
