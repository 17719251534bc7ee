package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/uuidcodec"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOrderCreation wraps any storage failure inside the order
	// transaction; it always follows a full rollback.
	ErrOrderCreation = errors.New("order creation failed")
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing connection, used by tests.
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.views,
	p.brand, p.color, p.material, p.gender, p.is_best_seller, p.is_visible,
	p.category_id, p.product_type_id, p.created_at, p.updated_at,
	c.name AS category_name, pt.name AS product_type_name`

// ProductFilter narrows ListProducts results. Nil fields are ignored.
type ProductFilter struct {
	CategoryID    *int64
	ProductTypeID *int64
	IsVisible     *bool
	IsBestSeller  *bool
	Gender        *string
}

// Sortable columns are whitelisted so caller input never reaches SQL raw.
var sortColumns = map[string]string{
	"created_at": "p.created_at",
	"price":      "p.price",
	"views":      "p.views",
	"name":       "p.name",
}

// GetProductByID retrieves one product row with its category and type names
func (s *Store) GetProductByID(ctx context.Context, id uuidcodec.ID) (*models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN product_types pt ON p.product_type_id = pt.id
		WHERE p.id = $1`

	var product models.Product
	err := s.db.GetContext(ctx, &product, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts retrieves product rows matching filter, ordered by sortBy.
// Unknown sort columns fall back to created_at; sortOrder is ASC or DESC.
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter, sortBy, sortOrder string) ([]models.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN product_types pt ON p.product_type_id = pt.id`

	var clauses []string
	var args []interface{}

	addClause := func(expr string, val interface{}) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if filter.CategoryID != nil {
		addClause("p.category_id = $%d", *filter.CategoryID)
	}
	if filter.ProductTypeID != nil {
		addClause("p.product_type_id = $%d", *filter.ProductTypeID)
	}
	if filter.IsVisible != nil {
		addClause("p.is_visible = $%d", *filter.IsVisible)
	}
	if filter.IsBestSeller != nil {
		addClause("p.is_best_seller = $%d", *filter.IsBestSeller)
	}
	if filter.Gender != nil {
		addClause("p.gender = $%d", *filter.Gender)
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		column = "p.created_at"
	}
	order := "DESC"
	if strings.EqualFold(sortOrder, "ASC") {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, order)

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProductImages retrieves all images for a product
func (s *Store) GetProductImages(ctx context.Context, productID uuidcodec.ID) ([]models.ProductImage, error) {
	var images []models.ProductImage
	err := s.db.SelectContext(ctx, &images,
		"SELECT * FROM product_images WHERE product_id = $1 ORDER BY is_thumbnail DESC, created_at", productID)
	return images, err
}

// GetProductSizes retrieves size/stock rows for a product
func (s *Store) GetProductSizes(ctx context.Context, productID uuidcodec.ID) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	err := s.db.SelectContext(ctx, &sizes, `
		SELECT ps.id, ps.product_id, ps.size_id, s.value AS size_value, ps.stock, ps.created_at, ps.updated_at
		FROM product_sizes ps
		JOIN sizes s ON ps.size_id = s.id
		WHERE ps.product_id = $1
		ORDER BY ps.size_id`, productID)
	return sizes, err
}

// GetPromotionsByProductID retrieves promotions attached to a product.
// The deterministic ORDER BY keeps discount tie-breaking stable across reads.
func (s *Store) GetPromotionsByProductID(ctx context.Context, productID uuidcodec.ID) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := s.db.SelectContext(ctx, &promos, `
		SELECT prm.id, prm.name, prm.description, prm.discount_type, prm.discount_value,
		       prm.start_date, prm.end_date, prm.created_at, prm.updated_at
		FROM promotions prm
		JOIN product_promotions pp ON prm.id = pp.promotion_id
		WHERE pp.product_id = $1
		ORDER BY prm.created_at, prm.id`, productID)
	return promos, err
}

// IncrementProductViews bumps the view counter on a single-product read
func (s *Store) IncrementProductViews(ctx context.Context, productID uuidcodec.ID) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE products SET views = views + 1 WHERE id = $1", productID)
	return err
}

// IsEventProcessed checks if a broker event has been recorded
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed records a broker event as applied
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
