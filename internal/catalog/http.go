package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"JSONShop/internal/filestore"
	"JSONShop/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger

	// Writes wraps the mutating routes, e.g. with a rate limiter.
	Writes func(http.Handler) http.Handler
}

type deleteResp struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

// Routes serves the products collection; mount it at /products.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Get("/{id}", s.get)

	r.Group(func(wr chi.Router) {
		if s.Writes != nil {
			wr.Use(s.Writes)
		}
		wr.Post("/", s.create)
		wr.Put("/{id}", s.update)
		wr.Delete("/{id}", s.remove)
	})

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "list products", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := filestore.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, "get product", err)
		return
	}

	p, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, "get product", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := kit.DecodeJSON(w, r, &in, maxBodyBytes); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Store.Create(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, r, "create product", err)
		return
	}

	if s.Log != nil {
		s.Log.Info("product created", zap.Int64("id", p.ID), zap.String("code", p.Code))
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, err := filestore.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, "update product", err)
		return
	}

	var patch ProductInput
	if err := kit.DecodeJSON(w, r, &patch, maxBodyBytes); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Store.Update(r.Context(), id, patch)
	if err != nil {
		s.writeStoreError(w, r, "update product", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, err := filestore.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, "delete product", err)
		return
	}

	p, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, "delete product", err)
		return
	}

	if s.Log != nil {
		s.Log.Info("product deleted", zap.Int64("id", p.ID))
	}
	kit.WriteJSON(w, http.StatusOK, deleteResp{Message: "product deleted", Product: p})
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	filestore.WriteError(w, r, s.Log, op, err)
}
