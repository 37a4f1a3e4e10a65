package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/ratelimit"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeMailer records what would have been e-mailed.
type fakeMailer struct {
	mu       sync.Mutex
	err      error
	orders   []models.Order
	contacts []models.ContactMessage
}

func (m *fakeMailer) SendContact(_ context.Context, msg models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.contacts = append(m.contacts, msg)
	return nil
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *fakeMailer) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// fakeImageStore serves uploads from a fixed CDN host.
type fakeImageStore struct {
	keys []string
}

func (s *fakeImageStore) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type testEnv struct {
	app         *fiber.App
	mailer      *fakeMailer
	images      *fakeImageStore
	limiter     *ratelimit.MemoryLimiter
	productRepo repositories.ProductRepository
	authService *services.AuthService
}

type setupOptions struct {
	images        bool
	memoryCatalog bool
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T, opts setupOptions) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Testimonial{}, &models.AdminUser{}))

	var productRepo repositories.ProductRepository = repositories.NewGORMProductRepository(db)
	if opts.memoryCatalog {
		productRepo = repositories.NewMemoryProductRepository()
	}
	testimonialRepo := repositories.NewGORMTestimonialRepository(db)
	adminRepo := repositories.NewGORMAdminUserRepository(db)

	limiter, err := ratelimit.NewMemoryLimiter(ratelimit.Config{MaxAttempts: 5, Window: time.Hour, SweepOnCheck: true}, time.Now)
	require.NoError(t, err)

	env := &testEnv{mailer: &fakeMailer{}, limiter: limiter, productRepo: productRepo}
	var images repositories.ImageStore
	if opts.images {
		env.images = &fakeImageStore{}
		images = env.images
	}

	emailCfg := services.EmailJSConfig{ServiceID: "svc", PublicKey: "pub"}
	pricer := services.NewPricer(services.PricingConfig{FreeShippingThreshold: 5000, FlatShippingFee: 250, TaxRate: 0.12})
	cartService := services.NewCartService(repositories.NewMemoryCartStorage(0, nil), nil)
	orderService := services.NewOrderService(limiter, env.mailer, pricer, nil, nil)
	productService := services.NewProductService(productRepo, images)
	testimonialService := services.NewTestimonialService(testimonialRepo, images)
	authService := services.NewAuthService(adminRepo, "test_jwt_secret", nil)

	app := fiber.New(fiber.Config{ProxyHeader: fiber.HeaderXForwardedFor, EnableIPValidation: true})
	apiV1 := app.Group("/api/v1", middleware.CartSession(time.Hour, false))

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, middleware.BootstrapOrAuth(adminRepo, authService))
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1)
	handlers.NewTestimonialHandler(testimonialService).RegisterRoutes(apiV1)
	handlers.NewContactHandler(env.mailer).RegisterRoutes(apiV1)
	handlers.NewAdminHandler(productService, testimonialService, emailCfg).RegisterRoutes(apiV1, middleware.AuthRequired(authService))
	handlers.NewCartHandler(cartService, pricer).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, cartService).RegisterRoutes(apiV1)

	env.app = app
	env.authService = authService
	return env
}

// client keeps the session cookie and admin token between requests.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies []*http.Cookie
	token   string
	ip      string
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, app: e.app, ip: "203.0.113.10"}
}

func (c *client) do(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *client) send(req *http.Request) (*http.Response, map[string]interface{}) {
	c.t.Helper()
	req.Header.Set(fiber.HeaderXForwardedFor, c.ip)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	if cookies := resp.Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func (c *client) login() {
	c.t.Helper()
	resp, _ := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "admin", "email": "admin@example.com", "password": "password123",
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	resp, body := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin", "password": "password123",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	c.token = body["token"].(string)
}

func addVitamin(c *client, quantity int) (*http.Response, map[string]interface{}) {
	return c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"id": "p1", "name": "Vitamin", "price": 1500, "image": "/v.jpg", "quantity": quantity,
	})
}

func addShake(c *client, quantity int) (*http.Response, map[string]interface{}) {
	return c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"id": "p2", "name": "Shake", "price": 1000, "image": "/s.jpg", "quantity": quantity,
	})
}

func checkoutForm() map[string]interface{} {
	return map[string]interface{}{
		"first_name": "Ana",
		"last_name":  "Cruz",
		"email":      "ana@example.com",
		"phone":      "0917",
		"address":    "1 Main St",
		"city":       "Makati",
		"state":      "NCR",
		"zip_code":   "1200",
		"country":    "PH",
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)
	c.login()
	assert.NotEmpty(t, c.token)

	// Once an admin exists, registering requires a token.
	anon := env.client(t)
	resp, _ := anon.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "second", "email": "second@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Duplicate registration by a signed-in admin.
	resp, _ = c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "admin", "email": "admin@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := anon.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication failed", body["message"])
}

func TestAuthRegisterStaleBootstrap(t *testing.T) {
	env := setupApp(t, setupOptions{})
	env.client(t).login()

	// A request that passed the bootstrap check before the first admin was created.
	app := fiber.New()
	app.Post("/register", func(c *fiber.Ctx) error {
		c.Locals(middleware.BootstrapLocal, true)
		return c.Next()
	}, handlers.NewAuthHandler(env.authService).HandleRegister)

	payload, err := json.Marshal(map[string]string{
		"username": "intruder", "email": "intruder@example.com", "password": "password123",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, services.ErrBootstrapClosed.Error(), body["error"])

	_, err = env.authService.Login("intruder", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestCartLifecycle(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)

	resp, body := c.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])

	resp, body = addVitamin(c, 2)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := body["notifications"].([]interface{})
	assert.Equal(t, "Added Vitamin to cart", notes[0].(map[string]interface{})["message"])
	assert.Equal(t, "success", notes[0].(map[string]interface{})["type"])

	_, body = addVitamin(c, 1)
	notes = body["notifications"].([]interface{})
	assert.Equal(t, "Updated Vitamin quantity in cart", notes[0].(map[string]interface{})["message"])
	assert.EqualValues(t, 3, body["total_quantity"])

	_, body = addShake(c, 3)
	assert.EqualValues(t, 2, body["item_count"])

	resp, body = c.do(http.MethodPatch, "/api/v1/cart/items/p1", map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	totals := body["totals"].(map[string]interface{})
	assert.EqualValues(t, 6000, totals["subtotal"])
	assert.EqualValues(t, 0, totals["shipping"])
	assert.EqualValues(t, 720, totals["tax"])
	assert.EqualValues(t, 6720, totals["total"])

	resp, _ = c.do(http.MethodPatch, "/api/v1/cart/items/p1", map[string]int{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = c.do(http.MethodPatch, "/api/v1/cart/items/p2", map[string]int{"quantity": 0})
	notes = body["notifications"].([]interface{})
	assert.Equal(t, "info", notes[0].(map[string]interface{})["type"])
	assert.Equal(t, "Removed Shake from cart", notes[0].(map[string]interface{})["message"])
	assert.EqualValues(t, 1, body["item_count"])

	// A second shopper has their own cart.
	other := env.client(t)
	_, body = other.do(http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, body["items"])

	_, body = c.do(http.MethodDelete, "/api/v1/cart/items/p1", nil)
	assert.Empty(t, body["items"])

	_, _ = addShake(c, 1)
	_, body = c.do(http.MethodDelete, "/api/v1/cart", nil)
	assert.Empty(t, body["items"])
	assert.Nil(t, body["notifications"])
}

func TestCartAddValidation(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)

	resp, body := c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"price": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "ID")
	assert.Contains(t, errs, "Price")
}

func TestCartQuantityLimit(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)

	resp, _ := addVitamin(c, math.MaxInt)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = addVitamin(c, services.MaxLineQuantity)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := addVitamin(c, math.MaxInt)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "Quantity")

	resp, _ = c.do(http.MethodPatch, "/api/v1/cart/items/p1", map[string]int{"quantity": services.MaxLineQuantity + 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = c.do(http.MethodGet, "/api/v1/cart", nil)
	assert.EqualValues(t, services.MaxLineQuantity, body["total_quantity"])
}

func TestCheckLimitEndpoint(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)

	resp, body := c.do(http.MethodPost, "/api/v1/orders/check-limit", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is required", body["error"])

	for i := 0; i < 5; i++ {
		resp, body = c.do(http.MethodPost, "/api/v1/orders/check-limit", map[string]string{"email": "A@example.com"})
		require.Equal(t, http.StatusOK, resp.StatusCode, "attempt %d", i+1)
		assert.Equal(t, true, body["allowed"])
	}

	resp, body = c.do(http.MethodPost, "/api/v1/orders/check-limit", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many attempts. Please try again in 60 minutes.", body["error"])

	c.ip = "198.51.100.1"
	resp, _ = c.do(http.MethodPost, "/api/v1/orders/check-limit", map[string]string{"email": "a@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a different IP is a different identifier")
}

func TestCheckoutSuccess(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)
	addVitamin(c, 2)
	addShake(c, 3)

	resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", checkoutForm())
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Order placed successfully!", body["message"])
	assert.Equal(t, "/thankyou", body["redirect"])
	assert.Regexp(t, `^ORD-\d+-[a-z0-9]{9}$`, body["order_id"])

	require.Len(t, env.mailer.orders, 1)
	assert.Equal(t, "ana@example.com", env.mailer.orders[0].Email)
	assert.Equal(t, 1, env.limiter.Count("ana@example.com-203.0.113.10"))

	_, body = c.do(http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, body["items"])
}

func TestCheckoutRejections(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)
	addVitamin(c, 1)

	t.Run("honeypot", func(t *testing.T) {
		form := checkoutForm()
		form["website"] = "http://spam.example"
		resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", form)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid submission", body["message"])
		assert.Nil(t, body["errors"])
		assert.Zero(t, env.limiter.Len())
	})

	t.Run("validation", func(t *testing.T) {
		form := checkoutForm()
		delete(form, "city")
		form["email"] = "nope"
		resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", form)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errs := body["errors"].(map[string]interface{})
		assert.Equal(t, "City is required", errs["City"])
		assert.Equal(t, "Invalid email address", errs["Email"])
	})

	t.Run("mailer failure keeps cart", func(t *testing.T) {
		env.mailer.fail(fmt.Errorf("%w 500: down", services.ErrEmailProvider))
		defer env.mailer.fail(nil)

		resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", checkoutForm())
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "email provider error 500: down", body["message"])

		_, cart := c.do(http.MethodGet, "/api/v1/cart", nil)
		assert.Len(t, cart["items"], 1)
	})

	t.Run("transport failure is not echoed", func(t *testing.T) {
		env.mailer.fail(fmt.Errorf("email request failed: %w",
			errors.New(`Post "https://api.emailjs.com/api/v1.0/email/send": dial tcp: i/o timeout`)))
		defer env.mailer.fail(nil)

		resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", checkoutForm())
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, services.MsgOrderEmailFailed, body["message"])
		assert.NotContains(t, body["message"], "emailjs.com")
	})

	t.Run("missing email config", func(t *testing.T) {
		env.mailer.fail(fmt.Errorf("%w: EMAILJS_ORDER_TEMPLATE_ID", services.ErrEmailConfig))
		defer env.mailer.fail(nil)

		resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", checkoutForm())
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "config", body["error"])
	})

	t.Run("rate limited", func(t *testing.T) {
		// Three attempts were consumed by the failures above.
		for i := 0; i < 2; i++ {
			resp, _ := c.do(http.MethodPost, "/api/v1/orders/check-limit", map[string]string{"email": "ana@example.com"})
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
		resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", checkoutForm())
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Contains(t, body["message"], "Too many attempts")
	})
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)

	resp, body := c.do(http.MethodPost, "/api/v1/orders/checkout", checkoutForm())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Your cart is empty", body["message"])
	assert.Empty(t, env.mailer.orders)
}

func TestContactEndpoint(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)

	resp, body := c.do(http.MethodPost, "/api/v1/contact", map[string]string{"name": "Ana"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])

	resp, body = c.do(http.MethodPost, "/api/v1/contact", map[string]string{
		"name": "Ana", "email": "ana@example.com", "message": "Do you ship abroad?",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	require.Len(t, env.mailer.contacts, 1)

	env.mailer.fail(fmt.Errorf("%w: EMAILJS_TEMPLATE_ID", services.ErrEmailConfig))
	resp, body = c.do(http.MethodPost, "/api/v1/contact", map[string]string{
		"name": "Ana", "email": "ana@example.com", "message": "Hello?",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	env.mailer.fail(fmt.Errorf("%w 400: The template ID is invalid", services.ErrEmailProvider))
	resp, body = c.do(http.MethodPost, "/api/v1/contact", map[string]string{
		"name": "Ana", "email": "ana@example.com", "message": "Hello?",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "email provider error 400: The template ID is invalid", body["message"])

	env.mailer.fail(fmt.Errorf("email request failed: %w",
		errors.New(`Post "https://api.emailjs.com/api/v1.0/email/send": context deadline exceeded`)))
	resp, body = c.do(http.MethodPost, "/api/v1/contact", map[string]string{
		"name": "Ana", "email": "ana@example.com", "message": "Hello?",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to send email. Please try again.", body["message"])
}

func TestCatalogEndpoints(t *testing.T) {
	env := setupApp(t, setupOptions{memoryCatalog: true})
	base := time.Now().Add(-time.Hour)
	for i, p := range []models.Product{
		{ID: "vit", Name: "Multivitamin", Price: 1800, Category: "Nutritional Supplements", Featured: true, BodyBenefits: models.StringList{"Immune Health"}},
		{ID: "omega", Name: "Omega", Price: 1500, Category: "Nutritional Supplements", BodyBenefits: models.StringList{"Heart Health"}},
		{ID: "serum", Name: "Night Serum", Price: 3200, Category: "Skin Care", BestSeller: true, BodyBenefits: models.StringList{"Skin Health"}},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, env.productRepo.Create(&p))
	}
	c := env.client(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=priceHigh&category=Nutritional%20Supplements,Skin%20Care", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	require.Len(t, products, 3)
	assert.Equal(t, "serum", products[0].ID)
	assert.Equal(t, "omega", products[2].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?benefit=Heart%20Health", nil)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	products = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	require.Len(t, products, 1)
	assert.Equal(t, "omega", products[0].ID)

	resp, body := c.do(http.MethodGet, "/api/v1/products/vit", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Multivitamin", body["name"])

	resp, _ = c.do(http.MethodGet, "/api/v1/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/vit/recommended", nil)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	products = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	require.Len(t, products, 1)
	assert.Equal(t, "omega", products[0].ID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/categories", nil)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	var categories []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	resp.Body.Close()
	assert.Equal(t, []string{"Nutritional Supplements", "Skin Care"}, categories)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/featured", nil)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	products = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	require.Len(t, products, 1)
	assert.Equal(t, "vit", products[0].ID)
}

func TestAdminProductEndpoints(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)

	resp, _ := c.do(http.MethodPost, "/api/v1/admin/products", map[string]interface{}{"name": "Nope", "price": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	c.login()

	resp, created := c.do(http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"name": "Calcium Plus", "description": "Bones", "price": 900, "stock": 20, "tag": "calcium",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, created)
	id := created["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "Nutritional Supplements", created["category"])
	assert.Equal(t, []interface{}{"Bone and Joint Health", "Foundational Health"}, created["body_benefits"])

	resp, body := c.do(http.MethodPost, "/api/v1/admin/products", map[string]interface{}{"price": -5})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])

	resp, updated := c.do(http.MethodPut, "/api/v1/admin/products/"+id, map[string]interface{}{
		"name": "Calcium Max", "price": 950, "stock": 10, "tag": "skin",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, updated)
	assert.Equal(t, "Skin Care", updated["category"])

	_, fetched := c.do(http.MethodGet, "/api/v1/products/"+id, nil)
	assert.Equal(t, "Calcium Max", fetched["name"])

	resp, _ = c.do(http.MethodPut, "/api/v1/admin/products/missing", map[string]interface{}{"name": "Ghost", "price": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = c.do(http.MethodDelete, "/api/v1/admin/products/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "deleted")

	resp, _ = c.do(http.MethodGet, "/api/v1/products/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminTestimonialEndpoints(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)
	c.login()

	resp, first := c.do(http.MethodPost, "/api/v1/admin/testimonials", map[string]string{"name": "Ana", "role": "Customer", "content": "Love it"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, first)
	time.Sleep(5 * time.Millisecond)
	resp, second := c.do(http.MethodPost, "/api/v1/admin/testimonials", map[string]string{"name": "Ben", "content": "Great service"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/testimonials", nil)
	listResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	var items []models.Testimonial
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&items))
	listResp.Body.Close()
	require.Len(t, items, 2)
	assert.Equal(t, "Ben", items[0].Name, "newest first")

	resp, updated := c.do(http.MethodPut, "/api/v1/admin/testimonials/"+first["id"].(string), map[string]string{"name": "Ana", "content": "Still love it"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Still love it", updated["content"])

	resp, _ = c.do(http.MethodDelete, "/api/v1/admin/testimonials/"+second["id"].(string), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = c.do(http.MethodDelete, "/api/v1/admin/testimonials/"+second["id"].(string), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func uploadRequest(t *testing.T, path, filename, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	header["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAdminUploads(t *testing.T) {
	env := setupApp(t, setupOptions{images: true})
	c := env.client(t)
	c.login()

	resp, body := c.send(uploadRequest(t, "/api/v1/admin/uploads/products", "photo.png", "image/png"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Regexp(t, `^https://cdn\.example\.com/products/[0-9a-f-]{36}\.png$`, body["url"])

	resp, body = c.send(uploadRequest(t, "/api/v1/admin/uploads/testimonial-images", "face.jpg", "image/jpeg"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Contains(t, body["url"], "/testimonial-images/")

	resp, _ = c.send(uploadRequest(t, "/api/v1/admin/uploads/products", "notes.txt", "text/plain"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.send(uploadRequest(t, "/api/v1/admin/uploads/elsewhere", "a.png", "image/png"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Len(t, env.images.keys, 2)
}

func TestAdminUploadsDisabled(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)
	c.login()

	resp, _ := c.send(uploadRequest(t, "/api/v1/admin/uploads/products", "photo.png", "image/png"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminEmailConfig(t *testing.T) {
	env := setupApp(t, setupOptions{})
	c := env.client(t)
	c.login()

	resp, body := c.do(http.MethodGet, "/api/v1/admin/email-config", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Set", body["serviceId"])
	assert.Equal(t, "Not Set", body["templateId"])
	assert.Equal(t, "Not Set", body["orderTemplateId"])
	assert.Equal(t, "Set", body["publicKey"])
}
