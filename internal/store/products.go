package store

import (
	"database/sql"
	"time"

	"github.com/stockpilot-io/stockpilot/internal/models"
)

// nullable maps an empty string to NULL so that the unique indexes on
// internal_code and barcode only apply to products that actually set them.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateProduct inserts a product and fills in its generated ID. Returns
// ErrConflict when the internal code or barcode is already in use.
func (s *Store) CreateProduct(p *models.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := s.db.Exec(
		`INSERT INTO products (public_id, name, internal_code, barcode, description, quantity, location, category, price, supplier, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PublicID, p.Name, nullable(p.InternalCode), nullable(p.Barcode), p.Description,
		p.Quantity, p.Location, p.Category, p.Price, p.Supplier, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	var internalCode, barcode sql.NullString
	err := row.Scan(&p.ID, &p.PublicID, &p.Name, &internalCode, &barcode, &p.Description,
		&p.Quantity, &p.Location, &p.Category, &p.Price, &p.Supplier, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.InternalCode = internalCode.String
	p.Barcode = barcode.String
	return p, nil
}

const productColumns = "id, public_id, name, internal_code, barcode, description, quantity, location, category, price, supplier, created_at, updated_at"

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(id int64) (*models.Product, error) {
	row := s.db.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns all products ordered by name.
func (s *Store) ListProducts() ([]*models.Product, error) {
	rows, err := s.db.Query("SELECT " + productColumns + " FROM products ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct overwrites every editable field of a product. Returns
// ErrNotFound when the ID doesn't exist and ErrConflict when the new
// internal code or barcode collides with another product.
func (s *Store) UpdateProduct(p *models.Product) error {
	p.UpdatedAt = time.Now()

	result, err := s.db.Exec(
		`UPDATE products SET name = ?, internal_code = ?, barcode = ?, description = ?, quantity = ?, location = ?, category = ?, price = ?, supplier = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, nullable(p.InternalCode), nullable(p.Barcode), p.Description,
		p.Quantity, p.Location, p.Category, p.Price, p.Supplier, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product by ID.
func (s *Store) DeleteProduct(id int64) error {
	result, err := s.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
