package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/billman/internal/model"
)

// PostgresCustomerRepo はPostgreSQLを使用した顧客リポジトリ。
type PostgresCustomerRepo struct {
	db *sql.DB
}

// NewPostgresCustomerRepo はPostgresCustomerRepoを生成する。
func NewPostgresCustomerRepo(db *sql.DB) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{db: db}
}

// ListAll は全顧客を名前昇順で返す。
func (r *PostgresCustomerRepo) ListAll(ctx context.Context) ([]*model.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, image_url FROM customers ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*model.Customer
	for rows.Next() {
		c := &model.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customer rows: %w", err)
	}
	return customers, nil
}

// ListFilteredWithTotals は検索語にマッチする顧客を請求書集計付きで返す。
func (r *PostgresCustomerRepo) ListFilteredWithTotals(ctx context.Context, query string) ([]model.CustomerWithTotals, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			customers.id, customers.name, customers.email, customers.image_url,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0) AS total_paid
		 FROM customers
		 LEFT JOIN invoices ON customers.id = invoices.customer_id
		 WHERE customers.name ILIKE $1 OR customers.email ILIKE $1
		 GROUP BY customers.id, customers.name, customers.email, customers.image_url
		 ORDER BY customers.name ASC`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers with totals: %w", err)
	}
	defer rows.Close()

	var results []model.CustomerWithTotals
	for rows.Next() {
		var row model.CustomerWithTotals
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Email, &row.ImageURL,
			&row.TotalInvoices, &row.TotalPending, &row.TotalPaid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer totals row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customer totals rows: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ CustomerRepository = (*PostgresCustomerRepo)(nil)
