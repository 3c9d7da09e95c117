package cart

import (
	"context"
	"slices"

	"JSONShop/internal/filestore"
)

const collectionName = "carts"

// FileStore keeps carts in one JSON file. Line items reference products by
// id only; unless a ProductChecker is set, the ids are not verified.
type FileStore struct {
	c        *filestore.Collection[Cart]
	products ProductChecker
}

// OpenFileStore opens (and on first use creates) the carts file at path.
// A non-nil products makes AddProduct reject unknown product ids.
func OpenFileStore(path string, products ProductChecker, opts ...filestore.Option) (*FileStore, error) {
	c, err := filestore.Open[Cart](collectionName, path, opts...)
	if err != nil {
		return nil, err
	}
	return &FileStore{c: c, products: products}, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx)
}

func (s *FileStore) Create(ctx context.Context) (Cart, error) {
	var created Cart
	err := s.c.Mutate(ctx, "create", func(carts []Cart) ([]Cart, error) {
		created = Cart{ID: filestore.NextID(carts), Products: []LineItem{}}
		return append(carts, created), nil
	})
	if err != nil {
		return Cart{}, err
	}
	return created, nil
}

func (s *FileStore) Get(ctx context.Context, id int64) (Cart, error) {
	var c Cart
	err := s.c.View(ctx, "get", func(carts []Cart) error {
		i := filestore.FindIndex(carts, id)
		if i < 0 {
			return notFound(id)
		}
		c = normalize(carts[i])
		return nil
	})
	return c, err
}

// AddProduct puts one unit of productID into the cart. A product already in
// the cart has its quantity incremented instead of getting a second line.
func (s *FileStore) AddProduct(ctx context.Context, cartID, productID int64) (Cart, error) {
	var updated Cart
	err := s.c.Mutate(ctx, "add_product", func(carts []Cart) ([]Cart, error) {
		i := filestore.FindIndex(carts, cartID)
		if i < 0 {
			return nil, notFound(cartID)
		}

		if s.products != nil {
			ok, err := s.products.Exists(ctx, productID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, filestore.NotFoundf("product with id %d not found", productID)
			}
		}

		c := normalize(carts[i])
		j := slices.IndexFunc(c.Products, func(li LineItem) bool { return li.Product == productID })
		if j >= 0 {
			c.Products[j].Quantity++
		} else {
			c.Products = append(c.Products, LineItem{Product: productID, Quantity: 1})
		}

		carts[i] = c
		updated = c
		return carts, nil
	})
	if err != nil {
		return Cart{}, err
	}
	return updated, nil
}

func normalize(c Cart) Cart {
	if c.Products == nil {
		c.Products = []LineItem{}
	}
	return c
}

func notFound(id int64) error {
	return filestore.NotFoundf("cart with id %d not found", id)
}
