package repos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"shopkart/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ReviewRow is a review joined with the reviewer's public identity.
type ReviewRow struct {
	domain.Review
	UserName  string `db:"user_name" json:"userName"`
	UserEmail string `db:"user_email" json:"userEmail"`
}

func (r *ReviewRepo) ListByProduct(productID string) ([]ReviewRow, error) {
	out := []ReviewRow{}
	err := r.db.Select(&out, `
		SELECT rv.id, rv.user_id, rv.product_id, rv.rating, rv.comment, rv.created_at,
		       u.name AS user_name, u.email AS user_email
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.product_id = ?
		ORDER BY datetime(rv.created_at) DESC
	`, productID)
	return out, err
}

func (r *ReviewRepo) Get(id string) (domain.Review, error) {
	var rv domain.Review
	err := r.db.Get(&rv, `
		SELECT id, user_id, product_id, rating, comment, created_at
		FROM reviews WHERE id = ?
	`, id)
	return rv, err
}

// Exists reports whether the user already reviewed the product.
func (r *ReviewRepo) Exists(userID, productID string) (bool, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM reviews WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ReviewRepo) Create(rv domain.Review) error {
	_, err := r.db.Exec(`
		INSERT INTO reviews(id, user_id, product_id, rating, comment, created_at)
		VALUES(?,?,?,?,?,CURRENT_TIMESTAMP)
	`, rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Comment)
	return err
}

func (r *ReviewRepo) Update(id string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	set := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for k, v := range cols {
		set = append(set, k+" = ?")
		args = append(args, v)
	}
	args = append(args, id)
	_, err := r.db.Exec(`UPDATE reviews SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	return err
}

func (r *ReviewRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	return err
}

// Aggregate recomputes the product's rating summary by scanning its reviews.
// There is no materialized aggregate.
func (r *ReviewRepo) Aggregate(productID string) (avg float64, count int, err error) {
	var row struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int             `db:"count"`
	}
	err = r.db.Get(&row, `
		SELECT AVG(rating) AS avg, COUNT(*) AS count
		FROM reviews WHERE product_id = ?
	`, productID)
	if err != nil {
		return 0, 0, err
	}
	return row.Avg.Float64, row.Count, nil
}

func (r *ReviewRepo) CountByUser(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM reviews WHERE user_id = ?`, userID)
	return n, err
}
