package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"JSONShop/internal/cart"
	"JSONShop/internal/catalog"
	"JSONShop/internal/config"
	"JSONShop/internal/filestore"
	"JSONShop/internal/shop"
	"JSONShop/pkg/kit"
)

func main() {
	service := "shop"

	cfg, err := config.Load(getenv("CONFIG_FILE", "config.yaml"), getenv("ENV_FILE", ".env"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("config loaded", cfg.Fields()...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fsOpts := []filestore.Option{
		filestore.WithLogger(log),
		filestore.WithMetrics(filestore.NewMetrics(reg)),
	}

	products, err := catalog.OpenFileStore(cfg.Data.Products, fsOpts...)
	if err != nil {
		log.Fatal("open products store failed", zap.Error(err))
	}

	var checker cart.ProductChecker
	if cfg.Carts.Verify {
		checker = products
	}
	carts, err := cart.OpenFileStore(cfg.Data.Carts, checker, fsOpts...)
	if err != nil {
		log.Fatal("open carts store failed", zap.Error(err))
	}

	h := shop.NewHandler(
		shop.Deps{
			Products:        products,
			Carts:           carts,
			WritesPerMinute: cfg.RateLimit.Writes,
		},
		shop.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsToken:   cfg.Metrics.Token,
		},
	)

	opts := kit.ServerOptions{
		ReadHeaderTimeout: cfg.HTTP.ReadHeader,
		ShutdownTimeout:   cfg.HTTP.Shutdown,
	}
	if err := kit.RunHTTPServer(":"+strconv.Itoa(cfg.HTTP.Port), h, log, opts); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
