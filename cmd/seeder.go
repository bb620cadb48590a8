package cmd

import (
	"fmt"
	"log"
	"time"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/financeops/finance-management/internal/auth"
	financeDatamodel "github.com/financeops/finance-management/internal/core/datamodel/finance"
	userDatamodel "github.com/financeops/finance-management/internal/core/datamodel/user"
	coreuser "github.com/financeops/finance-management/internal/core/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a super admin and a sample reporting chain for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM revenue_entries").Error; err != nil {
				log.Fatalf("failed to clear revenue entries: %v", err)
			}
			if err := db.Exec("DELETE FROM expense_entries").Error; err != nil {
				log.Fatalf("failed to clear expense entries: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)
		hash, err := hasher.Hash("changeme123")
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		superAdminID := seedUser(db, &userDatamodel.User{
			Email:        "root@finance.local",
			Username:     "root",
			PasswordHash: hash,
			FullName:     "Root Super Admin",
			Role:         string(coreuser.RoleSuperAdmin),
			IsActive:     true,
			IsVerified:   true,
		})

		seedUser(db, &userDatamodel.User{
			Email:        "admin@finance.local",
			Username:     "admin",
			PasswordHash: hash,
			FullName:     "Finance Admin",
			Role:         string(coreuser.RoleAdmin),
			IsActive:     true,
			IsVerified:   true,
		})

		managerID := seedUser(db, &userDatamodel.User{
			Email:        "manager@finance.local",
			Username:     "manager",
			PasswordHash: hash,
			FullName:     "Finance Manager",
			Department:   "finance",
			Role:         string(coreuser.RoleManager),
			IsActive:     true,
			IsVerified:   true,
		})

		accountantID := seedUser(db, &userDatamodel.User{
			Email:        "accountant@finance.local",
			Username:     "accountant",
			PasswordHash: hash,
			FullName:     "Staff Accountant",
			Department:   "finance",
			Role:         string(coreuser.RoleAccountant),
			IsActive:     true,
			IsVerified:   true,
			ManagerID:    &managerID,
		})

		seedUser(db, &userDatamodel.User{
			Email:        "employee@finance.local",
			Username:     "employee",
			PasswordHash: hash,
			FullName:     "Regular Employee",
			Department:   "operations",
			Role:         string(coreuser.RoleEmployee),
			IsActive:     true,
			IsVerified:   true,
			ManagerID:    &managerID,
		})

		seedDemoEntries(db, accountantID, managerID)

		fmt.Println("Seeded users with super admin id:", superAdminID)
	},
}

// seedDemoEntries plants a small approved/unapproved mix so a fresh install
// has something to list. Skipped when either ledger already has rows.
func seedDemoEntries(db *gorm.DB, accountantID, managerID int64) {
	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM revenue_entries").Scan(&count).Error; err == nil && count > 0 {
		fmt.Println("ledger already has entries, skipping demo data")
		return
	}

	now := time.Now()
	approvedAt := now.AddDate(0, 0, -3)

	revenue := &financeDatamodel.RevenueEntry{
		Title:        "Consulting retainer",
		Description:  "Monthly retainer for platform support",
		Amount:       12500.00,
		Category:     "services",
		Source:       "Acme Corp",
		EntryDate:    now.AddDate(0, 0, -7),
		IsApproved:   true,
		ApprovedByID: &managerID,
		ApprovedAt:   &approvedAt,
		CreatedByID:  accountantID,
	}
	if err := db.Create(revenue).Error; err != nil {
		log.Fatalf("failed to seed revenue entry: %v", err)
	}

	expense := &financeDatamodel.ExpenseEntry{
		Title:       "Office supplies",
		Description: "Printer paper and toner",
		Amount:      214.90,
		Category:    "office",
		Vendor:      "Staples",
		EntryDate:   now.AddDate(0, 0, -2),
		CreatedByID: accountantID,
	}
	if err := db.Create(expense).Error; err != nil {
		log.Fatalf("failed to seed expense entry: %v", err)
	}

	fmt.Println("Seeded demo ledger entries")
}

func seedUser(db *gorm.DB, u *userDatamodel.User) int64 {
	var existingID int64
	row := db.Raw("SELECT id FROM users WHERE username = ?", u.Username).Row()
	if err := row.Scan(&existingID); err == nil {
		fmt.Printf("user %s already exists\n", u.Username)
		return existingID
	}

	if err := db.Create(u).Error; err != nil {
		log.Fatalf("failed to seed user %s: %v", u.Username, err)
	}
	fmt.Printf("Seeded user: %s (%s)\n", u.Username, u.Role)
	return u.ID
}
