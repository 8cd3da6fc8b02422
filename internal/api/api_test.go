package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aviravastra/storefront/internal/apiclient"
	"github.com/aviravastra/storefront/internal/credentials"
)

type call struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	body   []byte
}

// recorder is a fake backend that records calls and answers from a route table
type recorder struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]func(w http.ResponseWriter, r *http.Request)
}

func newRecorder(t *testing.T) (*recorder, *Service, *credentials.MemoryStore) {
	t.Helper()
	rec := &recorder{routes: map[string]func(http.ResponseWriter, *http.Request){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, call{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			ctype:  r.Header.Get("Content-Type"),
			body:   body,
		})
		handler := rec.routes[r.Method+" "+r.URL.Path]
		rec.mu.Unlock()

		if handler == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Not found"}`)
			return
		}
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store := credentials.NewMemoryStore()
	client := apiclient.New(srv.URL, credentials.NewProvider(store))
	return rec, New(client), store
}

func (rec *recorder) handle(route string, status int, body string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.routes[route] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (rec *recorder) last(t *testing.T) call {
	t.Helper()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) == 0 {
		t.Fatal("no calls recorded")
	}
	return rec.calls[len(rec.calls)-1]
}

func TestProductsListFilter(t *testing.T) {
	rec, svc, _ := newRecorder(t)
	rec.handle("GET /products", http.StatusOK, `[
		{"_id":"p1","name":"Kanjivaram Silk","price":18500,"discountedPrice":15999,"category":{"_id":"c1","name":"Silk"},"stock":3,"isActive":true,"occasions":["o1"]},
		{"_id":"p2","name":"Chanderi Cotton","price":4200,"category":"c2","stock":0,"isActive":true}
	]`)

	products, err := svc.Products.List(context.Background(), ProductFilter{
		Search:   "silk",
		Occasion: "wedding",
		IsActive: ActiveOnly(),
		Limit:    4,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	got := rec.last(t)
	if got.query != "isActive=true&limit=4&occasion=wedding&search=silk" {
		t.Errorf("unexpected query %q", got.query)
	}

	if len(products) != 2 {
		t.Fatalf("got %d products", len(products))
	}
	if products[0].Category.ID != "c1" || products[0].Category.Name != "Silk" {
		t.Errorf("populated category not decoded: %+v", products[0].Category)
	}
	if products[1].Category.ID != "c2" || products[1].Category.Label() != "c2" {
		t.Errorf("id-only category not decoded: %+v", products[1].Category)
	}
	if products[0].UnitPrice() != 15999 {
		t.Errorf("unit price %v", products[0].UnitPrice())
	}
	if products[0].DiscountPercent() != 14 {
		t.Errorf("discount %d%%", products[0].DiscountPercent())
	}
	if len(products[0].Occasions) != 1 || products[0].Occasions[0].ID != "o1" {
		t.Errorf("occasions %+v", products[0].Occasions)
	}
}

func TestProductNotFound(t *testing.T) {
	_, svc, _ := newRecorder(t)

	_, err := svc.Products.Get(context.Background(), "missing")
	if err == nil || err.Error() != "Not found" {
		t.Fatalf("got %v, want Not found", err)
	}
	if apiclient.StatusCode(err) != http.StatusNotFound {
		t.Errorf("status %d", apiclient.StatusCode(err))
	}
}

func TestProductUpdateUsesAdminToken(t *testing.T) {
	rec, svc, store := newRecorder(t)
	_ = store.Set(credentials.AdminTokenKey, "abc123")
	rec.handle("PUT /admin/products/42", http.StatusOK, `{"_id":"42","name":"Paithani","price":0,"category":"c1","stock":0}`)

	discount := -5.0
	_, err := svc.Products.Update(context.Background(), "42", ProductInput{
		Name:            "Paithani",
		Category:        "c1",
		Price:           -100,
		DiscountedPrice: &discount,
		Stock:           -2,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got := rec.last(t)
	if got.auth != "Bearer abc123" {
		t.Errorf("got Authorization %q", got.auth)
	}

	var sent map[string]any
	if err := json.Unmarshal(got.body, &sent); err != nil {
		t.Fatalf("body: %v", err)
	}
	if sent["price"] != float64(0) || sent["stock"] != float64(0) {
		t.Errorf("price and stock should be clamped at zero: %s", got.body)
	}
	if sent["discountedPrice"] != float64(0) {
		t.Errorf("a filled discounted price should be clamped at zero and sent: %s", got.body)
	}
	if discount != -5 {
		t.Errorf("Normalize must not write through the caller's pointer, got %v", discount)
	}
	if occ, ok := sent["occasions"].([]any); !ok || len(occ) != 0 {
		t.Errorf("occasions should be an empty list: %s", got.body)
	}
}

func TestNormalizeLeavesEmptyDiscountUnset(t *testing.T) {
	in := ProductInput{Name: "Ilkal", Category: "c1", Price: 2400}.Normalize()
	if in.DiscountedPrice != nil {
		t.Errorf("empty discounted price should stay unset, got %v", *in.DiscountedPrice)
	}

	dat, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(dat), "discountedPrice") {
		t.Errorf("unset discounted price should not be sent: %s", dat)
	}
}

func TestProductValidation(t *testing.T) {
	rec, svc, _ := newRecorder(t)

	discount := 5000.0
	_, err := svc.Products.Create(context.Background(), ProductInput{Name: "Ikat", Category: "c1", Price: 3000, DiscountedPrice: &discount})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(rec.calls) != 0 {
		t.Error("invalid product should not reach the API")
	}
}

func TestTaxonomy(t *testing.T) {
	rec, svc, store := newRecorder(t)
	_ = store.Set(credentials.AdminTokenKey, "abc123")
	rec.handle("GET /occasions", http.StatusOK, `[{"_id":"o1","name":"Wedding","slug":"wedding","isActive":true}]`)
	rec.handle("POST /admin/collections", http.StatusCreated, `{"_id":"col1","name":"Heritage Weaves","slug":"heritage-weaves"}`)
	rec.handle("DELETE /admin/categories/c1", http.StatusNoContent, ``)

	terms, err := svc.Occasions.List(context.Background())
	if err != nil || len(terms) != 1 || terms[0].Slug != "wedding" {
		t.Fatalf("List = %+v, %v", terms, err)
	}
	if rec.last(t).auth != "" {
		t.Error("public taxonomy listing should not carry the admin token")
	}

	term, err := svc.Collections.Create(context.Background(), TermInput{Name: "Heritage Weaves"})
	if err != nil || term.ID != "col1" {
		t.Fatalf("Create = %+v, %v", term, err)
	}

	if err := svc.Categories.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := svc.Taxonomy("occasion"); !ok {
		t.Error("Taxonomy should accept the singular name")
	}
	if _, ok := svc.Taxonomy("colours"); ok {
		t.Error("Taxonomy accepted an unknown resource")
	}
}

func TestOrdersUpdateStatus(t *testing.T) {
	rec, svc, _ := newRecorder(t)
	rec.handle("PUT /admin/orders/ord1/status", http.StatusOK, `{"_id":"ord1","orderStatus":"SHIPPED","paymentStatus":"PAID","items":[]}`)

	order, err := svc.Orders.UpdateStatus(context.Background(), "ord1", OrderShipped)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if order.OrderStatus != OrderShipped || order.PaymentStatus != PaymentPaid {
		t.Errorf("unexpected order %+v", order)
	}
	if string(rec.last(t).body) != `{"status":"SHIPPED"}` {
		t.Errorf("unexpected body %s", rec.last(t).body)
	}

	before := len(rec.calls)
	if _, err := svc.Orders.UpdateStatus(context.Background(), "ord1", "LOST"); err == nil {
		t.Error("expected unknown status to be rejected")
	}
	if len(rec.calls) != before {
		t.Error("unknown status should not reach the API")
	}
}

func TestOrdersListStatusFilter(t *testing.T) {
	rec, svc, _ := newRecorder(t)
	rec.handle("GET /admin/orders", http.StatusOK, `[]`)

	if _, err := svc.Orders.List(context.Background(), OrderPlaced); err != nil {
		t.Fatalf("List: %v", err)
	}
	if q := rec.last(t).query; q != "status=PLACED" {
		t.Errorf("got query %q", q)
	}

	if _, err := svc.Orders.List(context.Background(), ""); err != nil {
		t.Fatalf("List: %v", err)
	}
	if q := rec.last(t).query; q != "" {
		t.Errorf("got query %q, want none", q)
	}
}

func TestOrdersCreateValidatesAddress(t *testing.T) {
	rec, svc, _ := newRecorder(t)

	_, err := svc.Orders.Create(context.Background(), CheckoutRequest{
		Items: []CheckoutItem{{ProductID: "p1", Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected address validation error")
	}
	if len(rec.calls) != 0 {
		t.Error("invalid checkout should not reach the API")
	}
}

func TestUploadImage(t *testing.T) {
	rec, svc, store := newRecorder(t)
	_ = store.Set(credentials.AdminTokenKey, "abc123")
	rec.mu.Lock()
	rec.routes["POST /upload/image"] = func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(ImageField)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"No image provided"}`)
			return
		}
		defer file.Close()
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "/uploads/" + header.Filename})
	}
	rec.mu.Unlock()

	res, err := svc.Uploads.UploadImage(context.Background(), "pallu.jpg", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if res.URL != "/uploads/pallu.jpg" {
		t.Errorf("got url %q", res.URL)
	}

	got := rec.last(t)
	if !strings.HasPrefix(got.ctype, "multipart/form-data") {
		t.Errorf("got Content-Type %q", got.ctype)
	}
	if got.auth != "Bearer abc123" {
		t.Errorf("got Authorization %q", got.auth)
	}

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(name), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		paths = append(paths, p)
	}

	urls, err := svc.Uploads.UploadImageFiles(context.Background(), paths)
	if err != nil {
		t.Fatalf("UploadImageFiles: %v", err)
	}
	want := []string{"/uploads/a.jpg", "/uploads/b.jpg", "/uploads/c.jpg"}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestGoogleAuth(t *testing.T) {
	rec, svc, _ := newRecorder(t)
	rec.handle("POST /auth/google", http.StatusOK, `{"token":"jwt-1","_id":"u1","name":"Meera","email":"meera@example.com"}`)

	res, err := svc.Auth.GoogleAuth(context.Background(), "google-credential")
	if err != nil {
		t.Fatalf("GoogleAuth: %v", err)
	}
	if res.Token != "jwt-1" || res.User.ID != "u1" || res.User.Name != "Meera" {
		t.Errorf("unexpected response %+v", res)
	}
	if string(rec.last(t).body) != `{"credential":"google-credential"}` {
		t.Errorf("unexpected body %s", rec.last(t).body)
	}
}

func TestRefRoundTrip(t *testing.T) {
	in := ProductInput{Name: "x", Category: "c1"}
	p := Product{ID: "p1", Category: Ref{ID: "c1", Name: "Silk"}, Occasions: RefsFromIDs([]string{"o1"})}

	dat, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(dat), `"category":"c1"`) || !strings.Contains(string(dat), `"occasions":["o1"]`) {
		t.Errorf("refs should marshal as ids: %s", dat)
	}

	got := InputFromProduct(p)
	if got.Category != in.Category || len(got.Occasions) != 1 {
		t.Errorf("InputFromProduct = %+v", got)
	}

	var nullRef Ref
	if err := json.Unmarshal([]byte(`null`), &nullRef); err != nil || nullRef.ID != "" {
		t.Errorf("null ref = %+v, %v", nullRef, err)
	}
}
