package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"shopkart/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, name, description, category, price, base_price, image,
  images_json, sizes_json, colors_json, stock, is_active,
  created_at, COALESCE(updated_at,'') AS updated_at`

// Filter captures the storefront catalog query parameters.
type Filter struct {
	Category string
	Search   string
	MinPrice int64 // <= 0 means unset
	MaxPrice int64
	SortBy   string // price-asc | price-desc | name | "" (newest first)
	Limit    int
	Offset   int
}

func (f Filter) where() (string, []any) {
	where := `is_active = 1`
	args := []any{}
	if f.Category != "" && f.Category != "all" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Search != "" {
		q := "%" + strings.ToLower(f.Search) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)`
		args = append(args, q, q, q)
	}
	if f.MinPrice > 0 {
		where += ` AND price >= ?`
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where += ` AND price <= ?`
		args = append(args, f.MaxPrice)
	}
	return where, args
}

func (f Filter) orderBy() string {
	switch f.SortBy {
	case "price-asc":
		return `price ASC`
	case "price-desc":
		return `price DESC`
	case "name":
		return `name ASC`
	default:
		return `created_at DESC`
	}
}

func (r *ProductRepo) List(f Filter) ([]domain.Product, error) {
	where, args := f.where()
	sql := `SELECT ` + productCols + ` FROM products WHERE ` + where +
		` ORDER BY ` + f.orderBy() + ` LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	out := []domain.Product{}
	err := r.db.Select(&out, sql, args...)
	return out, err
}

func (r *ProductRepo) Count(f Filter) (int, error) {
	where, args := f.where()
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products WHERE `+where, args...)
	return n, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

// ---------- Admin surface ----------

// AdminList paginates over all products (active or not) with optional
// case-insensitive substring search on name/description/id.
func (r *ProductRepo) AdminList(search, category string, limit, offset int) ([]domain.Product, int, error) {
	where := `1=1`
	args := []any{}
	if search != "" {
		q := "%" + strings.ToLower(search) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(id) LIKE ?)`
		args = append(args, q, q, q)
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Product{}
	sql := `SELECT ` + productCols + ` FROM products WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.db.Select(&out, sql, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id,name,description,category,price,base_price,image,
	    images_json,sizes_json,colors_json,stock,is_active,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Description, p.Category, p.Price, p.BasePrice, p.Image,
		p.ImagesJSON, p.SizesJSON, p.ColorsJSON, p.Stock, p.Active)
	return err
}

// Update applies only the named columns; the caller builds the set from the
// fields present in the request body.
func (r *ProductRepo) Update(id string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	set := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for k, v := range cols {
		set = append(set, k+" = ?")
		args = append(args, v)
	}
	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	_, err := r.db.Exec(`UPDATE products SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	return err
}

func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	return err
}

func (r *ProductRepo) CountAll() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}

func (r *ProductRepo) CountLowStock(threshold int) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products WHERE stock < ?`, threshold)
	return n, err
}
