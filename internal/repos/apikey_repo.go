package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"shopkart/internal/domain"
)

type ApiKeyRepo struct{ db *sqlx.DB }

func NewApiKeyRepo(db *sqlx.DB) *ApiKeyRepo { return &ApiKeyRepo{db: db} }

// FindActive returns the active key record for the given key string, or nil
// when the key is unknown or disabled.
func (r *ApiKeyRepo) FindActive(key string) (*domain.ApiKey, error) {
	var k domain.ApiKey
	err := r.db.Get(&k, `
		SELECT id, key, name, description, is_active, COALESCE(last_used,'') AS last_used
		FROM api_keys
		WHERE key = ? AND is_active = 1
	`, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// TouchLastUsed records key usage. Validation succeeds even if this write
// fails; the timestamp is informational.
func (r *ApiKeyRepo) TouchLastUsed(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET last_used = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
