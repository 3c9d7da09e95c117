package shop_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"JSONShop/internal/cart"
	"JSONShop/internal/catalog"
	"JSONShop/internal/filestore"
	"JSONShop/internal/shop"
)

type options struct {
	verify   bool
	writes   int
	registry *prometheus.Registry
	token    string
}

func newShopTS(t *testing.T, dir string, o options) *httptest.Server {
	t.Helper()

	var fsOpts []filestore.Option
	if o.registry != nil {
		fsOpts = append(fsOpts, filestore.WithMetrics(filestore.NewMetrics(o.registry)))
	}

	products, err := catalog.OpenFileStore(filepath.Join(dir, "products.json"), fsOpts...)
	if err != nil {
		t.Fatalf("open products: %v", err)
	}

	var checker cart.ProductChecker
	if o.verify {
		checker = products
	}
	carts, err := cart.OpenFileStore(filepath.Join(dir, "carts.json"), checker, fsOpts...)
	if err != nil {
		t.Fatalf("open carts: %v", err)
	}

	h := shop.NewHandler(
		shop.Deps{Products: products, Carts: carts, WritesPerMinute: o.writes},
		shop.HTTPDeps{
			Log:            zap.NewNop(),
			Service:        "shop",
			Registry:       o.registry,
			MetricsEnabled: o.registry != nil,
			MetricsToken:   o.token,
		},
	)

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestShop_PublicAPI_HappyPath(t *testing.T) {
	dir := t.TempDir()
	ts := newShopTS(t, dir, options{})
	c := &http.Client{}

	var created catalog.Product
	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/products", map[string]any{
			"title":       "A",
			"description": "d",
			"code":        "C1",
			"price":       "10",
			"stock":       "5",
			"category":    "x",
		}, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create product status=%d body=%s", resp.StatusCode, string(raw))
		}
		if err := json.Unmarshal(raw, &created); err != nil {
			t.Fatalf("decode product: %v body=%s", err, string(raw))
		}
		if created.ID != 1 || created.Price != 10 || created.Stock != 5 || !created.Status {
			t.Fatalf("unexpected product: %+v", created)
		}
		if !strings.Contains(string(raw), `"thumbnails":[]`) {
			t.Fatalf("thumbnails not an empty list: %s", string(raw))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPut, ts.URL+"/products/1", map[string]any{
			"id":    77,
			"price": 12,
		}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("update status=%d body=%s", resp.StatusCode, string(raw))
		}
		var got catalog.Product
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode product: %v", err)
		}
		if got.ID != 1 || got.Price != 12 {
			t.Fatalf("unexpected product after update: %+v", got)
		}
	}

	var cartID int64
	{
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/carts", nil, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create cart status=%d body=%s", resp.StatusCode, string(raw))
		}
		var got cart.Cart
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode cart: %v", err)
		}
		cartID = got.ID
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/carts/1", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get cart status=%d body=%s", resp.StatusCode, string(raw))
		}
		if strings.TrimSpace(string(raw)) != "[]" {
			t.Fatalf("empty cart body=%s", string(raw))
		}
	}

	for i := 0; i < 2; i++ {
		resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/carts/1/product/1", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add product status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/carts/1", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get cart status=%d body=%s", resp.StatusCode, string(raw))
		}
		var items []cart.LineItem
		if err := json.Unmarshal(raw, &items); err != nil {
			t.Fatalf("decode items: %v", err)
		}
		if len(items) != 1 || items[0].Product != created.ID || items[0].Quantity != 2 {
			t.Fatalf("items=%+v", items)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodDelete, ts.URL+"/products/1", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delete status=%d body=%s", resp.StatusCode, string(raw))
		}
	}

	if cartID != 1 {
		t.Fatalf("cart id=%d", cartID)
	}

	for _, name := range []string{"products.json", "carts.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
	}
}

func TestShop_PublicAPI_Errors(t *testing.T) {
	ts := newShopTS(t, t.TempDir(), options{verify: true})
	c := &http.Client{}

	cases := []struct {
		method string
		path   string
		body   any
		want   int
	}{
		{http.MethodPost, "/products", map[string]any{"title": "A"}, http.StatusBadRequest},
		{http.MethodGet, "/products/9", nil, http.StatusNotFound},
		{http.MethodGet, "/products/nine", nil, http.StatusBadRequest},
		{http.MethodPut, "/products/9", map[string]any{"title": "B"}, http.StatusNotFound},
		{http.MethodDelete, "/products/9", nil, http.StatusNotFound},
		{http.MethodGet, "/carts/9", nil, http.StatusNotFound},
		{http.MethodPost, "/carts/9/product/1", nil, http.StatusNotFound},
	}

	for _, tc := range cases {
		resp, raw := doJSON(t, c, tc.method, ts.URL+tc.path, tc.body, nil)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s %s status=%d want=%d body=%s", tc.method, tc.path, resp.StatusCode, tc.want, string(raw))
		}

		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
			t.Fatalf("%s %s: missing error message: %s", tc.method, tc.path, string(raw))
		}
	}

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/carts", nil, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create cart status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/carts/1/product/5", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown product status=%d body=%s", resp.StatusCode, string(raw))
	}
}

func TestShop_HealthAndMetrics(t *testing.T) {
	ts := newShopTS(t, t.TempDir(), options{registry: prometheus.NewRegistry(), token: "tok", writes: 1})
	c := &http.Client{}

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, _ := doJSON(t, c, http.MethodGet, ts.URL+path, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", path, resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, c, http.MethodPost, ts.URL+"/carts", nil, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first write status=%d", resp.StatusCode)
	}
	resp, _ = doJSON(t, c, http.MethodPost, ts.URL+"/carts", nil, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second write status=%d", resp.StatusCode)
	}

	resp, _ = doJSON(t, c, http.MethodGet, ts.URL+"/metrics", nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("metrics without token status=%d", resp.StatusCode)
	}

	resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/metrics", nil, map[string]string{
		"Authorization": "Bearer tok",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status=%d", resp.StatusCode)
	}
	for _, name := range []string{"http_requests_total", "store_operations_total", "store_save_duration_seconds"} {
		if !strings.Contains(string(raw), name) {
			t.Fatalf("metric %s missing", name)
		}
	}
}
