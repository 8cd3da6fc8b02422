package fakeapi_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aviravastra/storefront/internal/api"
	"github.com/aviravastra/storefront/internal/apiclient"
	"github.com/aviravastra/storefront/internal/cart"
	"github.com/aviravastra/storefront/internal/config"
	"github.com/aviravastra/storefront/internal/credentials"
	"github.com/aviravastra/storefront/internal/fakeapi"
	"github.com/aviravastra/storefront/internal/session"
)

const (
	adminEmail    = "admin@aviravastra.com"
	adminPassword = "correct horse battery staple"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.APIConfig {
	return &config.APIConfig{
		Environment:    "test",
		Host:           "127.0.0.1",
		Port:           5000,
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		IdleTimeout:    time.Second,
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		AllowedOrigins: "http://localhost:5173",
		MaxUploadBytes: 1 << 20,
	}
}

type harness struct {
	srv     *httptest.Server
	clock   *clock
	store   *credentials.MemoryStore
	client  *apiclient.Client
	svc     *api.Service
	session *session.Manager
}

func setup(t *testing.T, cfg *config.APIConfig) *harness {
	t.Helper()

	clk := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	server, err := fakeapi.NewServer(cfg, slog.New(slog.DiscardHandler),
		fakeapi.WithClock(clk.Now),
		fakeapi.WithBcryptCost(bcrypt.MinCost),
	)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	store := credentials.NewMemoryStore()
	client := apiclient.New(srv.URL+"/api", credentials.NewProvider(store))
	return &harness{
		srv:     srv,
		clock:   clk,
		store:   store,
		client:  client,
		svc:     api.New(client),
		session: session.NewManager(store),
	}
}

func (h *harness) adminLogin(t *testing.T) {
	t.Helper()
	res, err := h.svc.Auth.AdminLogin(context.Background(), adminEmail, adminPassword)
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if err := h.session.AdminLogin(res.Token); err != nil {
		t.Fatalf("storing admin token: %v", err)
	}
}

func TestCustomerCheckout(t *testing.T) {
	h := setup(t, testConfig())
	ctx := context.Background()

	auth, err := h.svc.Auth.GoogleAuth(ctx, "dev:meera@example.com")
	if err != nil {
		t.Fatalf("GoogleAuth: %v", err)
	}
	if err := h.session.Login(auth.User, auth.Token); err != nil {
		t.Fatalf("Login: %v", err)
	}

	me, err := h.svc.Auth.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Email != "meera@example.com" || me.Name != "Meera" {
		t.Errorf("got user %+v", me)
	}

	products, err := h.svc.Products.List(ctx, api.ProductFilter{Occasion: "wedding", IsActive: api.ActiveOnly()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("got %d wedding sarees, want 3", len(products))
	}
	if products[0].Name != "Paithani Silk Saree" {
		t.Errorf("listing should be newest first, got %q", products[0].Name)
	}
	if products[0].Category.Name != "Silk" {
		t.Errorf("category should be populated, got %+v", products[0].Category)
	}

	c := cart.New(h.store)
	if err := c.AddItem(products[0], 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	addr := api.ShippingAddress{FullName: "Meera", Phone: "9999999999", Line1: "12 MG Road", City: "Bengaluru", PostalCode: "560001", Country: "IN"}
	order, err := c.Checkout(ctx, h.svc.Orders, addr, "COD")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if order.OrderStatus != api.OrderPlaced || order.PaymentStatus != api.PaymentPending {
		t.Errorf("got statuses %s/%s", order.OrderStatus, order.PaymentStatus)
	}
	if order.TotalAmount != 24500 {
		t.Errorf("total should use the discounted price, got %v", order.TotalAmount)
	}

	// the only Paithani has been sold
	_ = c.AddItem(products[0], 1)
	_, err = c.Checkout(ctx, h.svc.Orders, addr, "COD")
	if apiclient.StatusCode(err) != http.StatusConflict || !strings.HasPrefix(err.Error(), "Insufficient stock") {
		t.Errorf("got %v, want insufficient stock", err)
	}
	if n, _ := c.Count(); n != 1 {
		t.Errorf("failed checkout should keep the cart, count %d", n)
	}

	mine, err := h.svc.Orders.Mine(ctx)
	if err != nil || len(mine) != 1 || mine[0].ID != order.ID {
		t.Errorf("Mine = %+v, %v", mine, err)
	}
}

func TestAdminCatalog(t *testing.T) {
	h := setup(t, testConfig())
	ctx := context.Background()

	_, err := h.svc.Auth.AdminLogin(ctx, adminEmail, "wrong")
	if apiclient.StatusCode(err) != http.StatusUnauthorized || err.Error() != "Invalid email or password" {
		t.Fatalf("got %v, want invalid credentials", err)
	}
	if apiclient.IsSessionInvalidated(err) {
		t.Error("a rejected login should not be reported as a lost session")
	}

	h.adminLogin(t)

	cat, err := h.svc.Categories.Create(ctx, api.TermInput{Name: "organza"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	if cat.Name != "Organza" || cat.Slug != "organza" {
		t.Errorf("got term %+v", cat)
	}
	_, err = h.svc.Categories.Create(ctx, api.TermInput{Name: "Organza"})
	if apiclient.StatusCode(err) != http.StatusConflict {
		t.Errorf("got %v, want conflict", err)
	}

	res, err := h.svc.Uploads.UploadImage(ctx, "drape.png", bytes.NewReader(pngBytes))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	img, err := http.Get(res.URL)
	if err != nil {
		t.Fatalf("fetching upload: %v", err)
	}
	img.Body.Close()
	if img.StatusCode != http.StatusOK || img.Header.Get("Content-Type") != "image/png" {
		t.Errorf("upload served with %d %s", img.StatusCode, img.Header.Get("Content-Type"))
	}

	discount := 2900.0
	p, err := h.svc.Products.Create(ctx, api.ProductInput{
		Name:            "Organza Floral Saree",
		Price:           3500,
		DiscountedPrice: &discount,
		Category:        cat.ID,
		Stock:           5,
		IsActive:        true,
		Images:          []string{res.URL},
	})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	got, err := h.svc.Products.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Category.ID != cat.ID || got.UnitPrice() != 2900 || len(got.Images) != 1 {
		t.Errorf("got product %+v", got)
	}

	in := api.InputFromProduct(*got)
	cleared := -1.0
	in.DiscountedPrice = &cleared
	in.Stock = 0
	updated, err := h.svc.Products.Update(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DiscountedPrice != 0 || updated.Stock != 0 {
		t.Errorf("got updated product %+v", updated)
	}

	if err := h.svc.Products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := h.svc.Products.Get(ctx, p.ID); apiclient.StatusCode(err) != http.StatusNotFound {
		t.Errorf("got %v after delete, want 404", err)
	}
}

func TestAdminOrders(t *testing.T) {
	h := setup(t, testConfig())
	ctx := context.Background()

	auth, err := h.svc.Auth.GoogleAuth(ctx, "dev:asha@example.com")
	if err != nil {
		t.Fatalf("GoogleAuth: %v", err)
	}
	_ = h.session.Login(auth.User, auth.Token)

	products, _ := h.svc.Products.List(ctx, api.ProductFilter{Search: "linen"})
	if len(products) != 1 {
		t.Fatalf("got %d linen products", len(products))
	}
	order, err := h.svc.Orders.Create(ctx, api.CheckoutRequest{
		Items:           []api.CheckoutItem{{ProductID: products[0].ID, Quantity: 2}},
		ShippingAddress: api.ShippingAddress{FullName: "Asha", Phone: "1", Line1: "1 Park St", City: "Kolkata", PostalCode: "700016"},
		PaymentMethod:   "UPI",
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if order.OrderStatus != api.OrderAwaitingPayment {
		t.Errorf("prepaid order status %s", order.OrderStatus)
	}

	h.adminLogin(t)

	orders, err := h.svc.Orders.List(ctx, api.OrderAwaitingPayment)
	if err != nil || len(orders) != 1 {
		t.Fatalf("List = %+v, %v", orders, err)
	}
	if orders[0].User.Name != "Asha" {
		t.Errorf("admin listing should populate the user, got %+v", orders[0].User)
	}

	delivered, err := h.svc.Orders.UpdateStatus(ctx, order.ID, api.OrderDelivered)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if delivered.OrderStatus != api.OrderDelivered || delivered.PaymentStatus != api.PaymentPaid {
		t.Errorf("got %s/%s", delivered.OrderStatus, delivered.PaymentStatus)
	}

	if placed, _ := h.svc.Orders.List(ctx, api.OrderPlaced); len(placed) != 0 {
		t.Errorf("status filter returned %d orders", len(placed))
	}
}

func TestExpiredAdminSession(t *testing.T) {
	h := setup(t, testConfig())
	ctx := context.Background()

	auth, _ := h.svc.Auth.GoogleAuth(ctx, "dev:meera@example.com")
	_ = h.session.Login(auth.User, auth.Token)
	h.adminLogin(t)

	var events []apiclient.SessionInvalidated
	var went []string
	shell := session.NewShell(slog.New(slog.DiscardHandler), session.NavigatorFunc(func(loc string) { went = append(went, loc) }))
	shell.Attach(h.client)
	h.client.OnSessionInvalidated(func(ev apiclient.SessionInvalidated) { events = append(events, ev) })

	if _, err := h.svc.Orders.List(ctx, ""); err != nil {
		t.Fatalf("List with a fresh token: %v", err)
	}

	h.clock.Advance(2 * time.Hour)

	_, err := h.svc.Orders.List(ctx, "")
	if !errors.Is(err, apiclient.ErrSessionInvalidated) {
		t.Fatalf("got %v, want ErrSessionInvalidated", err)
	}
	if _, err := h.session.AdminToken(); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Errorf("admin token should be cleared, got %v", err)
	}
	if _, err := h.session.Current(); err != nil {
		t.Errorf("customer session should survive, got %v", err)
	}
	if len(events) != 1 || events[0].RedirectTo != apiclient.AdminLoginLocation {
		t.Errorf("got events %+v", events)
	}
	if len(went) != 1 || went[0] != "/admin-login" {
		t.Errorf("shell navigated to %v", went)
	}
}

func TestCustomerTokenOnAdminRoute(t *testing.T) {
	h := setup(t, testConfig())
	ctx := context.Background()

	auth, _ := h.svc.Auth.GoogleAuth(ctx, "dev:meera@example.com")
	_ = h.session.Login(auth.User, auth.Token)

	_, err := h.svc.Orders.List(ctx, "")
	if !apiclient.IsSessionInvalidated(err) {
		t.Errorf("got %v, want session invalidated", err)
	}

	// uploads are admin scoped but not under /admin: plain 401
	_, err = h.svc.Uploads.UploadImage(ctx, "x.png", bytes.NewReader(pngBytes))
	if apiclient.IsSessionInvalidated(err) || apiclient.StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("got %v, want plain 401", err)
	}
}

func TestUploadLimits(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 64
	h := setup(t, cfg)
	h.adminLogin(t)
	ctx := context.Background()

	big := append(append([]byte{}, pngBytes...), make([]byte, 256)...)
	_, err := h.svc.Uploads.UploadImage(ctx, "big.png", bytes.NewReader(big))
	if apiclient.StatusCode(err) != http.StatusRequestEntityTooLarge {
		t.Errorf("got %v, want 413", err)
	}

	cfg = testConfig()
	h = setup(t, cfg)
	h.adminLogin(t)
	_, err = h.svc.Uploads.UploadImage(ctx, "notes.txt", strings.NewReader("plain text, not an image"))
	if apiclient.StatusCode(err) != http.StatusBadRequest {
		t.Errorf("got %v, want 400", err)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	h := setup(t, cfg)
	ctx := context.Background()

	if _, err := h.svc.Occasions.List(ctx); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := h.svc.Occasions.List(ctx)
	if apiclient.StatusCode(err) != http.StatusTooManyRequests || err.Error() != "Rate limit exceeded" {
		t.Errorf("got %v, want rate limit error", err)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := setup(t, testConfig())

	req, _ := http.NewRequest(http.MethodOptions, h.srv.URL+"/api/admin/products/1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	res.Body.Close()

	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("got Access-Control-Allow-Origin %q", got)
	}
}

func TestServiceEndpoints(t *testing.T) {
	h := setup(t, testConfig())

	tests := []struct {
		path string
		want string
	}{
		{"/health/live", `"status":"ok"`},
		{"/version", `"version":`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := http.Get(h.srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer res.Body.Close()

			var body bytes.Buffer
			if _, err := body.ReadFrom(res.Body); err != nil {
				t.Fatalf("reading body: %v", err)
			}
			if res.StatusCode != http.StatusOK {
				t.Errorf("got status %d, want 200", res.StatusCode)
			}
			if !strings.Contains(body.String(), tt.want) {
				t.Errorf("body %s does not contain %s", body.String(), tt.want)
			}
			if res.Header.Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers missing")
			}
		})
	}
}
