package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entity is anything stored in a Collection. Ids are positive and unique
// within one collection.
type Entity interface {
	EntityID() int64
}

// Collection owns one JSON file. Every call re-reads the file; nothing is
// cached between calls. Reads share the lock, mutations hold it exclusively
// for the whole load, mutate, save cycle so concurrent writers never lose
// each other's updates.
type Collection[T Entity] struct {
	name string
	path string

	log     *zap.Logger
	metrics *Metrics

	mu sync.RWMutex
}

type Option func(*options)

type options struct {
	log     *zap.Logger
	metrics *Metrics
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Open returns the collection stored at path, creating an empty file when
// none exists yet.
func Open[T Entity](name, path string, opts ...Option) (*Collection[T], error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection[T]{
		name:    name,
		path:    path,
		log:     o.log.With(zap.String("collection", name), zap.String("path", path)),
		metrics: o.metrics,
	}

	if err := c.bootstrap(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection[T]) bootstrap() error {
	_, err := os.Stat(c.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return storageErr("stat", c.path, err)
	}

	if err := Save(c.path, []T{}); err != nil {
		return err
	}
	c.log.Info("collection file created")
	return nil
}

func (c *Collection[T]) Name() string { return c.name }
func (c *Collection[T]) Path() string { return c.path }

// Ping reports whether the directory holding the collection is reachable.
func (c *Collection[T]) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(c.path)
	if _, err := os.Stat(dir); err != nil {
		return storageErr("stat", dir, err)
	}
	return nil
}

// All returns the full collection in file order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	err := c.View(ctx, "list", func(items []T) error {
		out = items
		return nil
	})
	return out, err
}

// View loads the collection under the shared lock and hands it to fn.
func (c *Collection[T]) View(ctx context.Context, op string, fn func(items []T) error) (err error) {
	defer c.observe(op, &err)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(c.load())
}

// Mutate runs one read-modify-write cycle. fn receives the current
// collection and returns the collection to persist. When fn fails the file
// is left untouched.
func (c *Collection[T]) Mutate(ctx context.Context, op string, fn func(items []T) ([]T, error)) (err error) {
	defer c.observe(op, &err)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	next, err := fn(c.load())
	if err != nil {
		return err
	}
	return c.save(next)
}

// ReplaceAll overwrites the collection with items.
func (c *Collection[T]) ReplaceAll(ctx context.Context, items []T) error {
	return c.Mutate(ctx, "replace", func([]T) ([]T, error) {
		return items, nil
	})
}

func (c *Collection[T]) load() []T {
	items, err := Read[T](c.path)
	if err != nil {
		c.log.Warn("collection unreadable, treating as empty", zap.Error(err))
		return []T{}
	}
	return items
}

func (c *Collection[T]) save(items []T) error {
	start := time.Now()
	err := Save(c.path, items)
	if c.metrics != nil {
		c.metrics.SaveLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}
	return err
}

func (c *Collection[T]) observe(op string, err *error) {
	if c.metrics == nil {
		return
	}
	c.metrics.Ops.WithLabelValues(c.name, op, Kind(*err)).Inc()
}

// NextID is one more than the largest id in items, or 1 when items is empty.
// Removing the entity holding the largest id frees that id for reuse.
func NextID[T Entity](items []T) int64 {
	var maxID int64
	for _, it := range items {
		maxID = max(maxID, it.EntityID())
	}
	return maxID + 1
}

// FindIndex returns the position of the entity with id, or -1.
func FindIndex[T Entity](items []T, id int64) int {
	return slices.IndexFunc(items, func(it T) bool { return it.EntityID() == id })
}

// ParseID turns an id taken from a request into the canonical form used by
// every collection.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, Validationf("invalid id %q", s)
	}
	return id, nil
}
