package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/cache"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	createErr error
	getErr    error
	created   []*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if common.NormalizeUsername(existing.UserName) == common.NormalizeUsername(u.UserName) {
			return nil, fmt.Errorf("%w: username %q", common.ErrConflict, u.UserName)
		}
	}
	stored := *u
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = time.Now()
	f.byID[stored.ID] = &stored
	f.created = append(f.created, &stored)
	out := stored
	return &out, nil
}

func (f *fakeUsersRepo) GetByUserName(_ context.Context, userName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if common.NormalizeUsername(u.UserName) == common.NormalizeUsername(userName) {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUsersRepo) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	_, err := f.GetByUserName(ctx, userName)
	if err == common.ErrorNotFound {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUsersRepo) List(context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

// --- roles ---

type fakeRolesRepo struct {
	mu          sync.Mutex
	byName      map[string]*models.Role
	assignments map[string][]int64
	nextID      int64
	ensureCalls int
	listErr     error
}

func newFakeRolesRepo() *fakeRolesRepo {
	return &fakeRolesRepo{byName: map[string]*models.Role{}, assignments: map[string][]int64{}}
}

func (f *fakeRolesRepo) Ensure(_ context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	if r, ok := f.byName[name]; ok {
		return r, nil
	}
	f.nextID++
	r := &models.Role{ID: f.nextID, Name: name}
	f.byName[name] = r
	return r, nil
}

func (f *fakeRolesRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (f *fakeRolesRepo) Assign(_ context.Context, userID string, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.assignments[userID] {
		if id == roleID {
			return nil
		}
	}
	f.assignments[userID] = append(f.assignments[userID], roleID)
	return nil
}

func (f *fakeRolesRepo) ListForUser(_ context.Context, userID string) ([]*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Role
	for _, id := range f.assignments[userID] {
		for _, r := range f.byName {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// --- catalog ---

type fakeCategoriesRepo struct {
	items map[int64]*models.Category
	next  int64
}

func newFakeCategoriesRepo(names ...string) *fakeCategoriesRepo {
	f := &fakeCategoriesRepo{items: map[int64]*models.Category{}}
	for _, n := range names {
		_, _ = f.Create(context.Background(), n)
	}
	return f
}

func (f *fakeCategoriesRepo) List(context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(f.items))
	for id := int64(1); id <= f.next; id++ {
		if c, ok := f.items[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoriesRepo) Get(_ context.Context, id int64) (*models.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCategoriesRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakeCategoriesRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, c := range f.items {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoriesRepo) Create(_ context.Context, name string) (*models.Category, error) {
	f.next++
	c := &models.Category{ID: f.next, Name: name, CreatedAt: time.Now()}
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeCategoriesRepo) Update(_ context.Context, id int64, name string) error {
	c, ok := f.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.Name = name
	return nil
}

func (f *fakeCategoriesRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeProductsRepo struct {
	items     map[int64]*models.Product
	next      int64
	listCalls int
}

func newFakeProductsRepo() *fakeProductsRepo {
	return &fakeProductsRepo{items: map[int64]*models.Product{}}
}

func (f *fakeProductsRepo) add(name string, stock int, categoryID int64) *models.Product {
	f.next++
	p := &models.Product{ID: f.next, Name: name, Stock: stock, CategoryID: categoryID}
	f.items[p.ID] = p
	return p
}

func (f *fakeProductsRepo) ordered() []*models.Product {
	out := make([]*models.Product, 0, len(f.items))
	for id := int64(1); id <= f.next; id++ {
		if p, ok := f.items[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeProductsRepo) List(context.Context) ([]*models.Product, error) {
	f.listCalls++
	return f.ordered(), nil
}

func (f *fakeProductsRepo) ListPage(_ context.Context, offset, limit int) ([]*models.Product, error) {
	all := f.ordered()
	if offset >= len(all) {
		return []*models.Product{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeProductsRepo) Count(context.Context) (int, error) {
	return len(f.items), nil
}

func (f *fakeProductsRepo) ListByCategory(_ context.Context, categoryID int64) ([]*models.Product, error) {
	out := []*models.Product{}
	for _, p := range f.ordered() {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductsRepo) Search(_ context.Context, term string) ([]*models.Product, error) {
	out := []*models.Product{}
	term = strings.ToLower(strings.TrimSpace(term))
	for _, p := range f.ordered() {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductsRepo) Get(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProductsRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakeProductsRepo) findByName(name string) *models.Product {
	for _, p := range f.items {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p
		}
	}
	return nil
}

func (f *fakeProductsRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	return f.findByName(name) != nil, nil
}

func (f *fakeProductsRepo) Create(_ context.Context, in *models.ProductInput) (*models.Product, error) {
	f.next++
	p := &models.Product{ID: f.next, Name: in.Name, Description: in.Description, Price: in.Price,
		ImgURL: in.ImgURL, SKU: in.SKU, Stock: in.Stock, CategoryID: in.CategoryID}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProductsRepo) Update(_ context.Context, id int64, in *models.ProductInput) error {
	p, ok := f.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Name, p.Description, p.Price, p.ImgURL, p.SKU, p.Stock, p.CategoryID =
		in.Name, in.Description, in.Price, in.ImgURL, in.SKU, in.Stock, in.CategoryID
	return nil
}

func (f *fakeProductsRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProductsRepo) Buy(_ context.Context, name string, quantity int) error {
	p := f.findByName(name)
	if p == nil || p.Stock < quantity {
		return common.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	users      *fakeUsersRepo
	roles      *fakeRolesRepo
	categories *fakeCategoriesRepo
	products   *fakeProductsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:      newFakeUsersRepo(),
		roles:      newFakeRolesRepo(),
		categories: newFakeCategoriesRepo(),
		products:   newFakeProductsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Roles(dbx.DBTX) roles.Repository              { return m.roles }
func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository    { return m.categories }
func (m *fakeRepoManager) Products(dbx.DBTX) products.Repository        { return m.products }

// --- cache ---

type mapCache struct {
	data    map[string][]byte
	deleted []string
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (m *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *mapCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}
