package postgres_test

import (
	"testing"
	"time"

	expenseDatamodel "github.com/frahmantamala/finance-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/finance-tracker/internal/expense"
	expensePostgres "github.com/frahmantamala/finance-tracker/internal/expense/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestExpensePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Postgres Suite")
}

const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	last_login_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	icon TEXT NOT NULL DEFAULT 'mdi-help-circle',
	type TEXT NOT NULL DEFAULT 'expense',
	parent_id INTEGER REFERENCES categories (id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	transaction_type TEXT NOT NULL DEFAULT 'expense',
	amount_cents INTEGER NOT NULL,
	description TEXT,
	date DATE NOT NULL,
	category_id INTEGER REFERENCES categories (id) ON DELETE SET NULL,
	user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	receipt_path TEXT,
	receipt_filename TEXT,
	receipt_sha256 TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

var _ = Describe("Expense Repository", func() {
	var (
		db         *gorm.DB
		repo       expense.RepositoryAPI
		categoryID int64
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Exec("PRAGMA foreign_keys = ON").Error).NotTo(HaveOccurred())
		Expect(db.Exec(testSchema).Error).NotTo(HaveOccurred())

		Expect(db.Exec(
			"INSERT INTO users (username, email, password_hash) VALUES ('alice', 'alice@mail.com', 'x'), ('bob', 'bob@mail.com', 'x')",
		).Error).NotTo(HaveOccurred())
		Expect(db.Exec(
			"INSERT INTO categories (name, icon, type, user_id) VALUES ('Food', '🍔', 'expense', 1)",
		).Error).NotTo(HaveOccurred())
		Expect(db.Raw("SELECT id FROM categories WHERE name = 'Food'").Row().Scan(&categoryID)).To(Succeed())

		repo = expensePostgres.NewExpenseRepository(db)
	})

	newExpense := func(userID int64, cents int64, catID *int64, date time.Time) *expenseDatamodel.Expense {
		return &expenseDatamodel.Expense{
			TransactionType: "expense",
			AmountCents:     cents,
			Date:            date,
			CategoryID:      catID,
			UserID:          userID,
		}
	}

	Describe("GetAllByUser", func() {
		It("hydrates category name and icon via the join", func() {
			e := newExpense(1, 1250, &categoryID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
			Expect(repo.Create(e)).To(Succeed())

			rows, err := repo.GetAllByUser(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].CategoryName).NotTo(BeNil())
			Expect(*rows[0].CategoryName).To(Equal("Food"))
			Expect(*rows[0].CategoryIcon).To(Equal("🍔"))
		})

		It("orders newest date first", func() {
			older := newExpense(1, 100, nil, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
			newer := newExpense(1, 200, nil, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
			Expect(repo.Create(older)).To(Succeed())
			Expect(repo.Create(newer)).To(Succeed())

			rows, err := repo.GetAllByUser(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].AmountCents).To(Equal(int64(200)))
		})

		It("excludes other users' expenses", func() {
			Expect(repo.Create(newExpense(2, 999, nil, time.Now()))).To(Succeed())

			rows, err := repo.GetAllByUser(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})
	})

	Describe("GetByIDForUser", func() {
		It("returns nil for another user's expense", func() {
			e := newExpense(1, 100, nil, time.Now())
			Expect(repo.Create(e)).To(Succeed())

			found, err := repo.GetByIDForUser(e.ID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("category deletion", func() {
		It("nulls out the reference instead of deleting the expense", func() {
			e := newExpense(1, 100, &categoryID, time.Now())
			Expect(repo.Create(e)).To(Succeed())

			Expect(db.Exec("DELETE FROM categories WHERE id = ?", categoryID).Error).NotTo(HaveOccurred())

			found, err := repo.GetByIDForUser(e.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.CategoryID).To(BeNil())
			Expect(found.CategoryName).To(BeNil())
		})
	})

	Describe("Delete", func() {
		It("removes only the owner's expense", func() {
			e := newExpense(1, 100, nil, time.Now())
			Expect(repo.Create(e)).To(Succeed())

			Expect(repo.Delete(e.ID, 2)).To(Succeed())
			found, err := repo.GetByIDForUser(e.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())

			Expect(repo.Delete(e.ID, 1)).To(Succeed())
			found, err = repo.GetByIDForUser(e.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})
})
