package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/billman/internal/auth"
	"github.com/hitoshi/billman/internal/config"
	"github.com/hitoshi/billman/internal/database"
)

// seedCustomer はデモ顧客データ。請求書から参照するためIDは固定しておく。
type seedCustomer struct {
	id       string
	name     string
	email    string
	imageURL string
}

// seedInvoice はデモ請求書データ。金額はセント単位。
type seedInvoice struct {
	customerID string
	amount     int64
	status     string
	date       string
}

var seedCustomers = []seedCustomer{
	{"d6e15727-9fe1-4961-8c5b-ea44a9bd81aa", "Evil Rabbit", "evil@rabbit.com", "/customers/evil-rabbit.png"},
	{"3958dc9e-712f-4377-85e9-fec4b6a6442a", "Delba de Oliveira", "delba@oliveira.com", "/customers/delba-de-oliveira.png"},
	{"3958dc9e-742f-4377-85e9-fec4b6a6442a", "Lee Robinson", "lee@robinson.com", "/customers/lee-robinson.png"},
	{"76d65c26-f784-44a2-ac19-586678f7c2f2", "Michael Novotny", "michael@novotny.com", "/customers/michael-novotny.png"},
	{"cc27c14a-0acf-4f4a-a6c9-d45682c144b9", "Amy Burns", "amy@burns.com", "/customers/amy-burns.png"},
	{"13d07535-c59e-4157-a011-f8d2ef4e0cbb", "Balazs Orban", "balazs@orban.com", "/customers/balazs-orban.png"},
}

var seedInvoices = []seedInvoice{
	{seedCustomers[0].id, 15795, "pending", "2022-12-06"},
	{seedCustomers[1].id, 20348, "pending", "2022-11-14"},
	{seedCustomers[4].id, 3040, "paid", "2022-10-29"},
	{seedCustomers[3].id, 44800, "paid", "2023-09-10"},
	{seedCustomers[5].id, 34577, "pending", "2023-08-05"},
	{seedCustomers[2].id, 54246, "pending", "2023-07-16"},
	{seedCustomers[0].id, 666, "pending", "2023-06-27"},
	{seedCustomers[3].id, 32545, "paid", "2023-06-09"},
	{seedCustomers[4].id, 1250, "paid", "2023-06-17"},
	{seedCustomers[5].id, 8546, "paid", "2023-06-07"},
	{seedCustomers[1].id, 500, "paid", "2023-08-19"},
	{seedCustomers[5].id, 8945, "paid", "2023-06-03"},
	{seedCustomers[2].id, 1000, "paid", "2022-06-05"},
}

var seedRevenue = map[string]int64{
	"Jan": 200000, "Feb": 180000, "Mar": 220000, "Apr": 250000,
	"May": 230000, "Jun": 320000, "Jul": 350000, "Aug": 370000,
	"Sep": 250000, "Oct": 280000, "Nov": 300000, "Dec": 480000,
}

// デモユーザーの資格情報
const (
	seedUserID    = "410544b2-4001-4271-9855-fec4b6a6442a"
	seedUserName  = "User"
	seedUserEmail = "user@nextmail.com"
	seedUserPass  = "123456"
)

// runSeed はマイグレーションを適用した上でデモデータを投入する。
// 既存行と衝突する場合はスキップするため、繰り返し実行しても安全。
func runSeed(cfg *config.Config) error {
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := seedUsers(db); err != nil {
		return err
	}
	if err := seedCustomerRows(db); err != nil {
		return err
	}
	if err := seedInvoiceRows(db); err != nil {
		return err
	}
	if err := seedRevenueRows(db); err != nil {
		return err
	}

	slog.Info("seed data inserted",
		slog.Int("customers", len(seedCustomers)),
		slog.Int("invoices", len(seedInvoices)),
		slog.Int("revenue_months", len(seedRevenue)),
	)
	return nil
}

func seedUsers(db *sql.DB) error {
	hash, err := auth.HashPassword(seedUserPass)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (id, name, email, password)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, seedUserID, seedUserName, seedUserEmail, hash)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}

func seedCustomerRows(db *sql.DB) error {
	for _, c := range seedCustomers {
		_, err := db.Exec(`
			INSERT INTO customers (id, name, email, image_url)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, c.id, c.name, c.email, c.imageURL)
		if err != nil {
			return fmt.Errorf("failed to seed customer %s: %w", c.name, err)
		}
	}
	return nil
}

func seedInvoiceRows(db *sql.DB) error {
	for _, inv := range seedInvoices {
		// 再実行しても重複しないよう、内容から決定的にIDを導出する
		name := fmt.Sprintf("%s/%d/%s/%s", inv.customerID, inv.amount, inv.status, inv.date)
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()

		_, err := db.Exec(`
			INSERT INTO invoices (id, customer_id, amount, status, date)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, id, inv.customerID, inv.amount, inv.status, inv.date)
		if err != nil {
			return fmt.Errorf("failed to seed invoice for %s: %w", inv.customerID, err)
		}
	}
	return nil
}

func seedRevenueRows(db *sql.DB) error {
	for month, revenue := range seedRevenue {
		_, err := db.Exec(`
			INSERT INTO revenue (month, revenue)
			VALUES ($1, $2)
			ON CONFLICT (month) DO NOTHING
		`, month, revenue)
		if err != nil {
			return fmt.Errorf("failed to seed revenue for %s: %w", month, err)
		}
	}
	return nil
}
