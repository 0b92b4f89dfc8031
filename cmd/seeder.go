package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/finance-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/finance-tracker/internal/category/postgres"
	"github.com/frahmantamala/finance-tracker/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo account and its default categories.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing data...")
			for _, table := range []string{"expenses", "categories", "users"} {
				if err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
					log.Fatalf("failed to truncate %s: %v", table, err)
				}
			}
		}

		demoUsername := "demo"
		demoEmail := "demo@mail.com"
		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		var userID int64
		row := db.Raw("SELECT id FROM users WHERE username = ?", demoUsername).Row()
		if err := row.Scan(&userID); err == nil {
			fmt.Println("demo user already exists:", demoEmail)
		} else {
			if err := db.Exec(
				"INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, now(), now())",
				demoUsername, demoEmail, string(hash)).Error; err != nil {
				log.Fatalf("failed to insert demo user: %v", err)
			}
			if err := db.Raw("SELECT id FROM users WHERE username = ?", demoUsername).Row().Scan(&userID); err != nil {
				log.Fatalf("failed to read back demo user: %v", err)
			}
			fmt.Println("Seeded demo user:", demoEmail)
		}

		var categoryCount int64
		if err := db.Raw("SELECT COUNT(*) FROM categories WHERE user_id = ?", userID).Row().Scan(&categoryCount); err != nil {
			log.Fatalf("failed to count categories: %v", err)
		}
		if categoryCount > 0 {
			fmt.Println("demo user already has categories; skipping taxonomy seed")
			return
		}

		categoryService := category.NewService(categoryPostgres.NewCategoryRepository(db), logger.LoggerWrapper())
		if err := categoryService.SeedDefaults(userID); err != nil {
			log.Fatalf("failed to seed default categories: %v", err)
		}
		fmt.Println("Seeded default categories for demo user")
	},
}
