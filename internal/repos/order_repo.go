package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"shopkart/internal/domain"
)

// ErrInsufficientStock is returned when a conditional stock decrement matches
// zero rows; the surrounding transaction is rolled back in full.
var ErrInsufficientStock = errors.New("insufficient stock")

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderItemRow is a line item joined with its product snapshot for responses.
type OrderItemRow struct {
	domain.OrderItem
	ProductName  string `db:"product_name" json:"productName"`
	ProductImage string `db:"product_image" json:"productImage"`
}

// CreateWithItems persists the order header, its line items, and the stock
// decrements in a single transaction. Each decrement is conditional
// (stock >= quantity, checked by affected rows); if any item comes up short
// the whole order rolls back and ErrInsufficientStock is returned wrapped
// with the product id.
func (r *OrderRepo) CreateWithItems(o domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, order_number, user_id, subtotal, shipping, tax, total, status,
	     payment_method, payment_status, shipping_address_json,
	     customer_name, customer_email, customer_phone, notes, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.OrderNumber, o.UserID, o.Subtotal, o.Shipping, o.Tax, o.Total, o.Status,
		o.PaymentMethod, o.PaymentStatus, o.AddressJSON,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Notes); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(id, order_id, product_id, quantity, price)
		  VALUES(?,?,?,?,?)
		`, it.ID, o.ID, it.ProductID, it.Quantity, it.Price); err != nil {
			return err
		}

		res, err := tx.Exec(`
		  UPDATE products SET stock = stock - ?
		  WHERE id = ? AND stock >= ?
		`, it.Quantity, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w for product %s", ErrInsufficientStock, it.ProductID)
		}
	}

	return tx.Commit()
}

func (r *OrderRepo) get(where string, arg any) (domain.Order, []OrderItemRow, error) {
	var o domain.Order
	if err := r.db.Get(&o, `
		SELECT id, order_number, user_id, subtotal, shipping, tax, total, status,
		       payment_method, payment_status, shipping_address_json,
		       customer_name, customer_email, customer_phone, notes, created_at
		FROM orders WHERE `+where, arg); err != nil {
		return domain.Order{}, nil, err
	}
	items, err := r.Items(o.ID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

func (r *OrderRepo) GetByID(id string) (domain.Order, []OrderItemRow, error) {
	return r.get(`id = ?`, id)
}

func (r *OrderRepo) GetByNumber(number string) (domain.Order, []OrderItemRow, error) {
	return r.get(`order_number = ?`, number)
}

func (r *OrderRepo) Items(orderID string) ([]OrderItemRow, error) {
	items := []OrderItemRow{}
	err := r.db.Select(&items, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		       p.name AS product_name, p.image AS product_image
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY p.name
	`, orderID)
	return items, err
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT id, order_number, user_id, subtotal, shipping, tax, total, status,
		       payment_method, payment_status, shipping_address_json,
		       customer_name, customer_email, customer_phone, notes, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

// ---------- Admin surface ----------

func (r *OrderRepo) AdminList(status string, limit, offset int) ([]domain.Order, int, error) {
	where := `1=1`
	args := []any{}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM orders WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Order{}
	args = append(args, limit, offset)
	err := r.db.Select(&out, `
		SELECT id, order_number, user_id, subtotal, shipping, tax, total, status,
		       payment_method, payment_status, shipping_address_json,
		       customer_name, customer_email, customer_phone, notes, created_at
		FROM orders WHERE `+where+`
		ORDER BY datetime(created_at) DESC
		LIMIT ? OFFSET ?
	`, args...)
	return out, total, err
}

// UpdateStatus changes the order status and refreshes the order_tracking
// mirror in the same transaction, so the mirror can only lag the truth
// between requests, never within one.
func (r *OrderRepo) UpdateStatus(id, status string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.Exec(`
		INSERT INTO order_tracking(order_id, status, updated_at)
		VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(order_id) DO UPDATE SET status = excluded.status, updated_at = CURRENT_TIMESTAMP
	`, id, status); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) Tracking(orderID string) (*domain.OrderTracking, error) {
	var t domain.OrderTracking
	err := r.db.Get(&t, `
		SELECT order_id, status, COALESCE(updated_at,'') AS updated_at
		FROM order_tracking WHERE order_id = ?
	`, orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *OrderRepo) CountAll() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

// Revenue sums totals across non-cancelled orders.
func (r *OrderRepo) Revenue() (int64, error) {
	var v int64
	err := r.db.Get(&v, `SELECT COALESCE(SUM(total),0) FROM orders WHERE status != 'CANCELLED'`)
	return v, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT id, order_number, user_id, subtotal, shipping, tax, total, status,
		       payment_method, payment_status, shipping_address_json,
		       customer_name, customer_email, customer_phone, notes, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}
