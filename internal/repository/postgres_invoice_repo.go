package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/billman/internal/model"
)

// PostgresInvoiceRepo はPostgreSQLを使用した請求書リポジトリ。
type PostgresInvoiceRepo struct {
	db *sql.DB
}

// NewPostgresInvoiceRepo はPostgresInvoiceRepoを生成する。
func NewPostgresInvoiceRepo(db *sql.DB) *PostgresInvoiceRepo {
	return &PostgresInvoiceRepo{db: db}
}

// FindByID は指定IDの請求書を取得する。見つからない場合はnilを返す。
func (r *PostgresInvoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	invoice := &model.Invoice{}
	var date time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, amount, status, date FROM invoices WHERE id = $1`,
		id,
	).Scan(&invoice.ID, &invoice.CustomerID, &invoice.Amount, &invoice.Status, &date)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice by ID: %w", err)
	}

	invoice.Date = date.Format("2006-01-02")
	return invoice, nil
}

// Create は請求書を作成する。全値をバインドパラメータで渡す。
func (r *PostgresInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (id, customer_id, amount, status, date)
		 VALUES ($1, $2, $3, $4, $5)`,
		invoice.ID, invoice.CustomerID, invoice.Amount, invoice.Status, invoice.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// Update は指定IDの請求書のcustomer_id、amount、statusのみを更新する。
// idとdateのカラムはSET句に含めない。
func (r *PostgresInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET customer_id = $1, amount = $2, status = $3 WHERE id = $4`,
		invoice.CustomerID, invoice.Amount, invoice.Status, invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの請求書を削除する。
// 行の不在が削除後の事後条件を満たすため、影響行数0も成功として扱う。
func (r *PostgresInvoiceRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invoices WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// ListFiltered は検索語にマッチする請求書一覧を顧客情報付きで返す。
func (r *PostgresInvoiceRepo) ListFiltered(ctx context.Context, query string, limit, offset int) ([]model.InvoiceWithCustomer, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			invoices.id, invoices.customer_id, invoices.amount, invoices.status, invoices.date,
			customers.name, customers.email, customers.image_url
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 WHERE
			customers.name ILIKE $1 OR
			customers.email ILIKE $1 OR
			invoices.amount::text ILIKE $1 OR
			invoices.date::text ILIKE $1 OR
			invoices.status ILIKE $1
		 ORDER BY invoices.date DESC, invoices.id
		 LIMIT $2 OFFSET $3`,
		pattern, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	return scanInvoicesWithCustomer(rows)
}

// CountFiltered は検索語にマッチする請求書の総数を返す。
func (r *PostgresInvoiceRepo) CountFiltered(ctx context.Context, query string) (int, error) {
	pattern := "%" + query + "%"
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 WHERE
			customers.name ILIKE $1 OR
			customers.email ILIKE $1 OR
			invoices.amount::text ILIKE $1 OR
			invoices.date::text ILIKE $1 OR
			invoices.status ILIKE $1`,
		pattern,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

// ListLatest は日付降順で最新の請求書を顧客情報付きで返す。
func (r *PostgresInvoiceRepo) ListLatest(ctx context.Context, limit int) ([]model.InvoiceWithCustomer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT
			invoices.id, invoices.customer_id, invoices.amount, invoices.status, invoices.date,
			customers.name, customers.email, customers.image_url
		 FROM invoices
		 JOIN customers ON invoices.customer_id = customers.id
		 ORDER BY invoices.date DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest invoices: %w", err)
	}
	defer rows.Close()

	return scanInvoicesWithCustomer(rows)
}

// CardData はダッシュボードのサマリー集計を単一クエリで返す。
func (r *PostgresInvoiceRepo) CardData(ctx context.Context) (*model.CardData, error) {
	data := &model.CardData{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM invoices),
			(SELECT COUNT(*) FROM customers),
			COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0)
		 FROM invoices`,
	).Scan(&data.InvoiceCount, &data.CustomerCount, &data.TotalPaid, &data.TotalPending)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch card data: %w", err)
	}
	return data, nil
}

// scanInvoicesWithCustomer は請求書+顧客のJOIN結果をスキャンする。
func scanInvoicesWithCustomer(rows *sql.Rows) ([]model.InvoiceWithCustomer, error) {
	var results []model.InvoiceWithCustomer
	for rows.Next() {
		var row model.InvoiceWithCustomer
		var date time.Time
		if err := rows.Scan(
			&row.ID, &row.CustomerID, &row.Amount, &row.Status, &date,
			&row.CustomerName, &row.CustomerEmail, &row.CustomerImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		row.Date = date.Format("2006-01-02")
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice rows: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ InvoiceRepository = (*PostgresInvoiceRepo)(nil)
