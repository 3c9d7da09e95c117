package cart

import "context"

type LineItem struct {
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}

type Cart struct {
	ID       int64      `json:"id"`
	Products []LineItem `json:"products"`
}

func (c Cart) EntityID() int64 { return c.ID }

type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context) (Cart, error)
	Get(ctx context.Context, id int64) (Cart, error)
	AddProduct(ctx context.Context, cartID, productID int64) (Cart, error)
}

// ProductChecker answers whether a product id exists. catalog.FileStore
// satisfies it.
type ProductChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
