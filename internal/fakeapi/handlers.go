package fakeapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// AUTH
// =============================================================================

type authResponse struct {
	Token string `json:"token"`
	*user
}

// googleClaims are the fields read from a Google identity credential
type googleClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// parseGoogleCredential reads the identity in a Google credential.
// The development API does not contact Google: the credential is decoded without verification,
// and outside prod "dev:<email>" is accepted as a shortcut.
func (s *Server) parseGoogleCredential(credential string) (*googleClaims, error) {
	if email, ok := strings.CutPrefix(credential, "dev:"); ok && s.environment != "prod" {
		name, _, _ := strings.Cut(email, "@")
		return &googleClaims{Email: email, Name: cases.Title(language.English).String(name)}, nil
	}

	claims := &googleClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("credential has no email")
	}
	if claims.Name == "" {
		claims.Name = claims.Email
	}
	return claims, nil
}

func (s *Server) googleAuthHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Credential string `json:"credential"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	identity, err := s.parseGoogleCredential(req.Credential)
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeAuthenticationFailure, "Invalid Google credential")
		return
	}

	u := s.store.upsertUser(identity.Email, identity.Name, identity.Picture, roleCustomer)
	s.respondWithToken(w, r, u)
}

func (s *Server) adminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.auth.CheckAdminCredentials(req.Email, req.Password); err != nil {
		s.respondWithError(w, r, http.StatusUnauthorized, ErrCodeAuthenticationFailure, "Invalid email or password")
		return
	}

	u := s.store.upsertUser(s.auth.adminEmail, "Administrator", "", roleAdmin)
	s.respondWithToken(w, r, u)
}

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, u *user) {
	token, err := s.auth.CreateToken(u)
	if err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Could not create token")
		return
	}
	respondWithJSON(w, http.StatusOK, authResponse{Token: token, user: u})
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := ContextClaims(r.Context())
	u, err := s.store.getUser(claims.Subject)
	if err != nil {
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "User not found")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := productFilter{
		Search:     q.Get("search"),
		Occasion:   q.Get("occasion"),
		Collection: q.Get("collection"),
		Category:   q.Get("category"),
	}
	if v := q.Get("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "isActive must be true or false")
			return
		}
		filter.IsActive = &active
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be a positive number")
			return
		}
		filter.Limit = limit
	}

	products := s.store.listProducts(filter)
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, s.store.productView(p))
	}
	respondWithJSON(w, http.StatusOK, views)
}

func (s *Server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.getProduct(chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Product not found")
		return
	}
	respondWithJSON(w, http.StatusOK, s.store.productView(*p))
}

func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	p, err := s.store.createProduct(in)
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, s.store.productView(*p))
}

func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	p, err := s.store.updateProduct(chi.URLParam(r, "id"), in)
	switch {
	case errors.Is(err, errNotFound):
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Product not found")
		return
	case err != nil:
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, s.store.productView(*p))
}

func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.deleteProduct(chi.URLParam(r, "id")); err != nil {
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Product not found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product removed"})
}

// =============================================================================
// TAXONOMY
// =============================================================================

// taxonomyResource returns the {resource} url param when it names a taxonomy
func (s *Server) taxonomyResource(w http.ResponseWriter, r *http.Request) (string, bool) {
	resource := chi.URLParam(r, "resource")
	if !slices.Contains(taxonomyResources, resource) {
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Not found")
		return "", false
	}
	return resource, true
}

func (s *Server) listTermsHandler(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, s.store.listTerms(resource))
	}
}

func (s *Server) createTermHandler(w http.ResponseWriter, r *http.Request) {
	resource, ok := s.taxonomyResource(w, r)
	if !ok {
		return
	}
	var in termInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	t, err := s.store.createTerm(resource, in)
	switch {
	case errors.Is(err, errAlreadyExists):
		s.respondWithError(w, r, http.StatusConflict, ErrCodeResourceAlreadyExists, err.Error())
		return
	case err != nil:
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, t)
}

func (s *Server) updateTermHandler(w http.ResponseWriter, r *http.Request) {
	resource, ok := s.taxonomyResource(w, r)
	if !ok {
		return
	}
	var in termInput
	if !s.decodeBody(w, r, &in) {
		return
	}

	t, err := s.store.updateTerm(resource, chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Not found")
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTermHandler(w http.ResponseWriter, r *http.Request) {
	resource, ok := s.taxonomyResource(w, r)
	if !ok {
		return
	}
	if err := s.store.deleteTerm(resource, chi.URLParam(r, "id")); err != nil {
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Not found")
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// =============================================================================
// ORDERS
// =============================================================================

func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	claims, _ := ContextClaims(r.Context())

	o, err := s.store.placeOrder(claims.Subject, req)
	switch {
	case errors.Is(err, errOutOfStock):
		s.respondWithError(w, r, http.StatusConflict, ErrCodeInsufficientStock, "Insufficient stock"+strings.TrimPrefix(err.Error(), errOutOfStock.Error()))
		return
	case errors.Is(err, errNotFound):
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Product not found")
		return
	case err != nil:
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, s.store.orderView(*o, false))
}

func (s *Server) myOrdersHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := ContextClaims(r.Context())
	orders := s.store.listOrders("", claims.Subject)

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.store.orderView(o, false))
	}
	respondWithJSON(w, http.StatusOK, views)
}

// getOrderHandler returns an order to its owner or to an admin
func (s *Server) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := ContextClaims(r.Context())

	o, err := s.store.getOrder(chi.URLParam(r, "id"))
	if err != nil || (o.User != claims.Subject && claims.Role != roleAdmin) {
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Order not found")
		return
	}
	respondWithJSON(w, http.StatusOK, s.store.orderView(*o, claims.Role == roleAdmin))
}

func (s *Server) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(r.URL.Query().Get("status"))
	if status != "" && !slices.Contains(orderStatuses, status) {
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, fmt.Sprintf("Invalid status %q", status))
		return
	}

	orders := s.store.listOrders(status, "")
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.store.orderView(o, true))
	}
	respondWithJSON(w, http.StatusOK, views)
}

func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}

	o, err := s.store.updateOrderStatus(chi.URLParam(r, "id"), req.Status)
	switch {
	case errors.Is(err, errNotFound):
		s.respondWithError(w, r, http.StatusNotFound, ErrCodeResourceNotFound, "Order not found")
		return
	case err != nil:
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, s.store.orderView(*o, true))
}

// =============================================================================
// UPLOADS
// =============================================================================

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func (s *Server) uploadImageHandler(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondWithError(w, r, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Image too large")
			return
		}
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "No image provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "Could not read image")
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageTypes[contentType]
	if !ok {
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			fmt.Sprintf("%s is not a supported image type", filepath.Base(header.Filename)))
		return
	}

	name := newID() + ext
	s.store.saveUpload(name, upload{ContentType: contentType, Data: data})

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"url": fmt.Sprintf("%s://%s/uploads/%s", requestScheme(r), r.Host, name),
	})
}

func (s *Server) serveUploadHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := s.store.getUpload(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", u.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(u.Data)
}

// requestScheme honours X-Forwarded-Proto when running behind a proxy
func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
