package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mocktest-service/internal/domain"
)

// PackageStore reads and writes package JSONB documents. Callers are
// expected to route writes through the pricing policy (app.PackageService).
type PackageStore struct {
	pool *pgxpool.Pool
}

func NewPackageStore(pool *pgxpool.Pool) *PackageStore {
	return &PackageStore{pool: pool}
}

func (s *PackageStore) GetPackage(ctx context.Context, packageID string) (domain.Package, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM packages WHERE id=$1`, packageID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Package{}, domain.ErrPackageNotFound
	}
	if err != nil {
		return domain.Package{}, fmt.Errorf("load package: %w", err)
	}
	var pkg domain.Package
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return domain.Package{}, fmt.Errorf("unmarshal package: %w", err)
	}
	return pkg, nil
}

func (s *PackageStore) SavePackage(ctx context.Context, pkg domain.Package) error {
	data, err := json.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("marshal package: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO packages (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
		pkg.ID, data,
	)
	if err != nil {
		return fmt.Errorf("save package: %w", err)
	}
	return nil
}
