package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"marketplace-backend/config"
	"marketplace-backend/database"
	"marketplace-backend/internal/services"
)

func main() {
	log.Println("🚀 Initializing Marketplace database...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("📌 Database: %s", cfg.DatabaseURL)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Println("📊 Setting up database...")
	migrator := database.NewMigrationManager(db)
	if err := migrator.RunMigrations(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	if cfg.AdminEmail != "" {
		log.Println("👤 Ensuring admin account...")
		seeded, err := services.NewUserService(db).SeedAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("❌ Failed to seed admin: %v", err)
		}
		if seeded {
			log.Printf("  ✅ created %s", cfg.AdminEmail)
		} else {
			log.Printf("  ℹ️  %s already exists", cfg.AdminEmail)
		}
	} else {
		log.Println("⚠️  ADMIN_EMAIL not set, skipping admin seeding")
	}

	log.Println("🔍 Verifying schema...")
	if err := displaySystemStatus(db, migrator); err != nil {
		log.Fatalf("❌ System integrity check failed: %v", err)
	}

	log.Println("\n🎉 Database initialization completed successfully!")
}

// countRows verifies that a table exists and returns its size
func countRows(db *sql.DB, tableName string) (int, error) {
	var count int
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)).Scan(&count); err != nil {
		return 0, fmt.Errorf("table %s not accessible: %w", tableName, err)
	}
	return count, nil
}

// displaySystemStatus prints the applied migrations and a row count per table
func displaySystemStatus(db *sql.DB, migrator *database.MigrationManager) error {
	applied, err := migrator.GetMigrationStatus()
	if err != nil {
		return err
	}
	log.Printf("  ✅ %d migrations applied", len(applied))

	for _, table := range []string{"users", "sellers", "products", "seller_products", "event_banners", "orders", "order_items"} {
		count, err := countRows(db, table)
		if err != nil {
			log.Printf("  ❌ %s: %v", table, err)
			return err
		}
		log.Printf("  ✅ %s: %d rows", table, count)
	}
	return nil
}
