package notifications

import "github.com/jackc/pgx/v5/pgxpool"

// Store persists per-user notifications and resolves recipient email
// addresses for the mail fan-out.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}
