package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"shopkart/internal/domain"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, email, name, phone, password_hash, role, is_verified, created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.db.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u domain.User) error {
	_, err := r.db.Exec(`
		INSERT INTO users(id,email,name,phone,password_hash,role,is_verified,created_at)
		VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, u.ID, u.Email, u.Name, u.Phone, u.Hash, u.Role, u.Verified)
	return err
}

// UpdateProfile applies only the named columns (name, phone).
func (r *UserRepo) UpdateProfile(id string, cols map[string]any) error {
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
	_, err := r.db.Exec(`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	return err
}

func (r *UserRepo) UpdateRole(id, role string) error {
	_, err := r.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	return err
}

// AdminList paginates users with optional substring search on name/email.
func (r *UserRepo) AdminList(search string, limit, offset int) ([]domain.User, int, error) {
	where := `1=1`
	args := []any{}
	if search != "" {
		q := "%" + strings.ToLower(search) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?)`
		args = append(args, q, q)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM users WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.User{}
	args = append(args, limit, offset)
	err := r.db.Select(&out, `
		SELECT `+userCols+` FROM users WHERE `+where+`
		ORDER BY datetime(created_at) DESC
		LIMIT ? OFFSET ?
	`, args...)
	return out, total, err
}

func (r *UserRepo) CountAll() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (r *UserRepo) CountOrders(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID)
	return n, err
}
