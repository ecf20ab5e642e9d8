package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
)

// Seed makes sure a default organization and an admin account exist so a
// fresh deployment is usable. It is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	orgID, err := ensureOrganization(ctx, pool, cfg.SeedOrgName)
	if err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, orgID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	code := strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	err = pool.QueryRow(ctx, "INSERT INTO organizations (name, code) VALUES ($1, $2) RETURNING id", name, code).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, orgID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (organization_id, email, full_name, password_hash, role, status)
    VALUES ($1, $2, 'Administrator', $3, $4, 'active')
    RETURNING id
  `, orgID, email, hash, string(auth.RoleAdmin)).Scan(&id)
}
