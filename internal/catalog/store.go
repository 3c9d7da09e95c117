package catalog

import "context"

type Product struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int64    `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

func (p Product) EntityID() int64 { return p.ID }

// Store is the Product Store. Errors wrap one of the filestore error kinds.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, in ProductInput) (Product, error)
	Update(ctx context.Context, id int64, patch ProductInput) (Product, error)
	Delete(ctx context.Context, id int64) (Product, error)
}
