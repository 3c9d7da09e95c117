package catalog

import (
	"context"
	"errors"
	"slices"

	"JSONShop/internal/filestore"
)

const collectionName = "products"

// FileStore keeps products in one JSON file.
type FileStore struct {
	c *filestore.Collection[Product]
}

// OpenFileStore opens (and on first use creates) the products file at path.
func OpenFileStore(path string, opts ...filestore.Option) (*FileStore, error) {
	c, err := filestore.Open[Product](collectionName, path, opts...)
	if err != nil {
		return nil, err
	}
	return &FileStore{c: c}, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx)
}

func (s *FileStore) List(ctx context.Context) ([]Product, error) {
	return s.c.All(ctx)
}

func (s *FileStore) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := s.c.View(ctx, "get", func(products []Product) error {
		i := filestore.FindIndex(products, id)
		if i < 0 {
			return notFound(id)
		}
		p = products[i]
		return nil
	})
	return p, err
}

func (s *FileStore) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, filestore.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *FileStore) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := checkCreate(in); err != nil {
		return Product{}, err
	}

	var created Product
	err := s.c.Mutate(ctx, "create", func(products []Product) ([]Product, error) {
		if codeTaken(products, *in.Code, 0) {
			return nil, conflict(*in.Code)
		}

		created = Product{
			ID:          filestore.NextID(products),
			Title:       *in.Title,
			Description: *in.Description,
			Code:        *in.Code,
			Price:       in.Price.Value,
			Status:      true,
			Stock:       int64(in.Stock.Value),
			Category:    *in.Category,
			Thumbnails:  in.Thumbnails.list(),
		}
		if in.Status.Set {
			created.Status = bool(in.Status.Flag)
		}

		return append(products, created), nil
	})
	if err != nil {
		return Product{}, err
	}
	return created, nil
}

func (s *FileStore) Update(ctx context.Context, id int64, patch ProductInput) (Product, error) {
	var updated Product
	err := s.c.Mutate(ctx, "update", func(products []Product) ([]Product, error) {
		i := filestore.FindIndex(products, id)
		if i < 0 {
			return nil, notFound(id)
		}
		if err := checkPatch(patch); err != nil {
			return nil, err
		}
		if patch.Code != nil && codeTaken(products, *patch.Code, id) {
			return nil, conflict(*patch.Code)
		}

		products[i] = merge(products[i], patch)
		updated = products[i]
		return products, nil
	})
	if err != nil {
		return Product{}, err
	}
	return updated, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) (Product, error) {
	var removed Product
	err := s.c.Mutate(ctx, "delete", func(products []Product) ([]Product, error) {
		i := filestore.FindIndex(products, id)
		if i < 0 {
			return nil, notFound(id)
		}
		removed = products[i]
		return slices.Delete(products, i, i+1), nil
	})
	if err != nil {
		return Product{}, err
	}
	return removed, nil
}

// merge overwrites the fields present in patch. The id never changes.
func merge(p Product, patch ProductInput) Product {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.Price != nil {
		p.Price = patch.Price.Value
	}
	if patch.Stock != nil {
		p.Stock = int64(patch.Stock.Value)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Status.Set {
		p.Status = bool(patch.Status.Flag)
	}
	if patch.Thumbnails != nil {
		p.Thumbnails = patch.Thumbnails.list()
	}
	if p.Thumbnails == nil {
		p.Thumbnails = []string{}
	}
	return p
}

func codeTaken(products []Product, code string, exceptID int64) bool {
	return slices.ContainsFunc(products, func(p Product) bool {
		return p.Code == code && p.ID != exceptID
	})
}

func notFound(id int64) error {
	return filestore.NotFoundf("product with id %d not found", id)
}

func conflict(code string) error {
	return filestore.Conflictf("product with code %q already exists", code)
}
