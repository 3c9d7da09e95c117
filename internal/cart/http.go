package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"JSONShop/internal/filestore"
	"JSONShop/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger

	// Writes wraps the mutating routes, e.g. with a rate limiter.
	Writes func(http.Handler) http.Handler
}

// Routes serves the carts collection; mount it at /carts.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/{id}", s.get)

	r.Group(func(wr chi.Router) {
		if s.Writes != nil {
			wr.Use(s.Writes)
		}
		wr.Post("/", s.create)
		wr.Post("/{id}/product/{pid}", s.addProduct)
	})

	return r
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c, err := s.Store.Create(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "create cart", err)
		return
	}

	if s.Log != nil {
		s.Log.Info("cart created", zap.Int64("id", c.ID))
	}
	kit.WriteJSON(w, http.StatusCreated, c)
}

// get answers with the cart's line items only.
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := filestore.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, "get cart", err)
		return
	}

	c, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, "get cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c.Products)
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	cartID, err := filestore.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, "add product", err)
		return
	}
	productID, err := filestore.ParseID(chi.URLParam(r, "pid"))
	if err != nil {
		s.writeStoreError(w, r, "add product", err)
		return
	}

	c, err := s.Store.AddProduct(r.Context(), cartID, productID)
	if err != nil {
		s.writeStoreError(w, r, "add product", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	filestore.WriteError(w, r, s.Log, op, err)
}
