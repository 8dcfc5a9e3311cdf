package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/billman/internal/model"
)

// PostgresRevenueRepo はPostgreSQLを使用した月別売上リポジトリ。
type PostgresRevenueRepo struct {
	db *sql.DB
}

// NewPostgresRevenueRepo はPostgresRevenueRepoを生成する。
func NewPostgresRevenueRepo(db *sql.DB) *PostgresRevenueRepo {
	return &PostgresRevenueRepo{db: db}
}

// ListMonthly は月別売上を返す。
func (r *PostgresRevenueRepo) ListMonthly(ctx context.Context) ([]model.Revenue, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT month, revenue FROM revenue`)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue: %w", err)
	}
	defer rows.Close()

	var results []model.Revenue
	for rows.Next() {
		var rev model.Revenue
		if err := rows.Scan(&rev.Month, &rev.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		results = append(results, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revenue rows: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ RevenueRepository = (*PostgresRevenueRepo)(nil)
