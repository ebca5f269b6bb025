package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}

	res, err := s.auth.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Logins.WithLabelValues(res.Message).Inc()

	if s.hideReason {
		res = services.ConcealLoginFailure(res)
	}

	if !res.Succeeded() {
		render.Status(r, http.StatusUnauthorized)
	}
	render.JSON(w, r, res)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "malformed request body")
		return
	}

	unique, err := s.auth.IsUniqueUser(r.Context(), req.UserName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !unique {
		badRequest(w, r, "user already exists")
		return
	}

	profile, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+profile.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, profile)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	p, err := s.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, p)
}
