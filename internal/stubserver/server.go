// Package stubserver implements a small in-memory REST backend with the
// contract the client consumes: /register plus product CRUD with
// Laravel-style 422 validation bodies. It backs the `shopfront stub`
// subcommand for local development and the end-to-end tests; it is test
// support, not a production server.
package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"shopfront/internal/catalog"
)

// Server holds the in-memory state behind the stub REST API.
type Server struct {
	mu       sync.RWMutex
	products []catalog.Product
	users    map[string]catalog.User // keyed by email
	log      *zap.Logger
	engine   *gin.Engine
}

// New creates a stub server with an empty catalog.
func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		users: make(map[string]catalog.User),
		log:   log,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	api.POST("/register", s.register)
	api.GET("/products", s.listProducts)
	api.POST("/products", s.createProduct)
	api.GET("/products/:id", s.getProduct)
	api.PUT("/products/:id", s.updateProduct)
	api.DELETE("/products/:id", s.deleteProduct)

	s.engine = engine
	return s
}

// Handler exposes the HTTP handler, for tests running against
// httptest.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// seedRecord mirrors catalog.Product with YAML keys matching the wire names.
type seedRecord struct {
	ID                string  `yaml:"id"`
	Name              string  `yaml:"name"`
	Title             string  `yaml:"title"`
	Description       string  `yaml:"description"`
	Price             float64 `yaml:"price"`
	AvailableQuantity int     `yaml:"available_quantity"`
}

// Seed loads an initial catalog from a YAML file of products. Records
// without an ID get one assigned.
func (s *Server) Seed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var records []seedRecord
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	products := make([]catalog.Product, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		products[i] = catalog.Product{
			ID:                r.ID,
			Name:              r.Name,
			Title:             r.Title,
			Description:       r.Description,
			Price:             r.Price,
			AvailableQuantity: r.AvailableQuantity,
		}
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.log.Info("seeded catalog", zap.Int("count", len(products)), zap.String("file", path))
	return nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("stub backend listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// validationError writes a Laravel-style 422 body.
func validationError(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": "The given data was invalid.",
		"errors":  errs,
	})
}

type registerPayload struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (s *Server) register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}

	errs := map[string][]string{}
	if strings.TrimSpace(payload.Name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if strings.TrimSpace(payload.Email) == "" {
		errs["email"] = append(errs["email"], "The email field is required.")
	}
	if len(payload.Password) < 8 {
		errs["password"] = append(errs["password"], "The password must be at least 8 characters.")
	}
	if payload.Password != payload.PasswordConfirmation {
		errs["password"] = append(errs["password"], "The password confirmation does not match.")
	}

	s.mu.Lock()
	if _, taken := s.users[payload.Email]; taken && errs["email"] == nil {
		errs["email"] = append(errs["email"], "The email has already been taken.")
	}
	if len(errs) > 0 {
		s.mu.Unlock()
		validationError(c, errs)
		return
	}
	user := catalog.User{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(payload.Name),
		Email: payload.Email,
	}
	s.users[payload.Email] = user
	s.mu.Unlock()

	s.log.Info("registered user", zap.String("email", payload.Email))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"access_token": uuid.NewString(),
			"user":         user,
		},
	})
}

func (s *Server) listProducts(c *gin.Context) {
	s.mu.RLock()
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	s.mu.RUnlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) getProduct(c *gin.Context) {
	id := c.Param("id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
}

func validateProduct(fields catalog.ProductFields) map[string][]string {
	errs := map[string][]string{}
	if strings.TrimSpace(fields.Name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if strings.TrimSpace(fields.Title) == "" {
		errs["title"] = append(errs["title"], "The title field is required.")
	}
	if strings.TrimSpace(fields.Description) == "" {
		errs["description"] = append(errs["description"], "The description field is required.")
	}
	if fields.Price <= 0 {
		errs["price"] = append(errs["price"], "The price must be greater than 0.")
	}
	if fields.AvailableQuantity < 0 {
		errs["available_quantity"] = append(errs["available_quantity"], "The available quantity must be at least 0.")
	}
	return errs
}

func (s *Server) createProduct(c *gin.Context) {
	var fields catalog.ProductFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}
	if errs := validateProduct(fields); len(errs) > 0 {
		validationError(c, errs)
		return
	}

	product := catalog.Product{
		ID:                uuid.NewString(),
		Name:              fields.Name,
		Title:             fields.Title,
		Description:       fields.Description,
		Price:             fields.Price,
		AvailableQuantity: fields.AvailableQuantity,
	}

	s.mu.Lock()
	s.products = append(s.products, product)
	s.mu.Unlock()

	s.log.Info("created product", zap.String("product_id", product.ID))
	c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	id := c.Param("id")
	var fields catalog.ProductFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed request body"})
		return
	}
	if errs := validateProduct(fields); len(errs) > 0 {
		validationError(c, errs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = catalog.Product{
				ID:                id,
				Name:              fields.Name,
				Title:             fields.Title,
				Description:       fields.Description,
				Price:             fields.Price,
				AvailableQuantity: fields.AvailableQuantity,
			}
			c.JSON(http.StatusOK, s.products[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
}

func (s *Server) deleteProduct(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
}
