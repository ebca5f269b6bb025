package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const defaultPageSize = 5

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return id, nil
}

// pathParam returns a URL parameter with percent-escapes decoded.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.categories.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	c, err := s.categories.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, c)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}
	c, err := s.categories.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/categories/%d", c.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	var req categoryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}
	if err := s.categories.Update(r.Context(), id, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := s.categories.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.products.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, p)
}

func (s *Server) pagedProducts(w http.ResponseWriter, r *http.Request) {
	pageNumber, err := intQuery(r, "pageNumber", 1)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	pageSize, err := intQuery(r, "pageSize", defaultPageSize)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	page, err := s.products.Page(r.Context(), pageNumber, pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}
	p, err := s.products.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/products/%d", p.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

func (s *Server) productsByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	list, err := s.products.ListByCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(list) == 0 {
		notFound(w, r, fmt.Sprintf("no products in category %d", id))
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := pathParam(r, "term")
	list, err := s.products.Search(r.Context(), term)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(list) == 0 {
		notFound(w, r, fmt.Sprintf("no products match '%s'", term))
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) buyProduct(w http.ResponseWriter, r *http.Request) {
	quantity, err := strconv.Atoi(chi.URLParam(r, "quantity"))
	if err != nil {
		badRequest(w, r, "quantity must be an integer")
		return
	}
	msg, err := s.products.Buy(r.Context(), pathParam(r, "name"), quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"message": msg})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	var in models.ProductInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}
	if err := s.products.Update(r.Context(), id, in); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
