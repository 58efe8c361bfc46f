package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	datamodel "github.com/quickmark/qr-management/internal/core/datamodel/user"
	"github.com/quickmark/qr-management/internal/rbac"
)

var (
	bootstrapEmail    string
	bootstrapPassword string
)

// seedCmd is the only path that mints a super admin. Registration never
// special-cases any email; promoting an account is an explicit, audited
// operator action.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bootstrap the super admin account",
	Long: `Promote an existing account to super admin, or create it when the
account does not exist yet. Records the promotion in the activity log.`,
	Run: func(cmd *cobra.Command, args []string) {
		if bootstrapEmail == "" {
			log.Fatal("--admin-email is required")
		}

		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		var profile datamodel.Profile
		err = db.First(&profile, "email = ?", bootstrapEmail).Error
		switch {
		case err == nil:
			if profile.Role == rbac.RoleSuperAdmin {
				fmt.Println("account is already a super admin:", bootstrapEmail)
				return
			}
			oldRole := profile.Role
			updates := map[string]interface{}{
				"role":      rbac.RoleSuperAdmin,
				"is_active": true,
			}
			if err := db.Model(&profile).Updates(updates).Error; err != nil {
				log.Fatalf("failed to promote account: %v", err)
			}
			recordBootstrap(db, profile.ID, fmt.Sprintf(`{"old_role":%q,"new_role":%q,"source":"seed"}`, oldRole, rbac.RoleSuperAdmin))
			fmt.Printf("promoted %s from %s to superAdmin\n", bootstrapEmail, oldRole)

		case errors.Is(err, gorm.ErrRecordNotFound):
			if bootstrapPassword == "" {
				log.Fatal("--admin-password is required when the account does not exist yet")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(bootstrapPassword), cfg.Security.BCryptCost)
			if err != nil {
				log.Fatalf("failed to hash password: %v", err)
			}

			profile = datamodel.Profile{
				Email:        bootstrapEmail,
				Name:         "Super Admin",
				PasswordHash: string(hash),
				Role:         rbac.RoleSuperAdmin,
				Plan:         "enterprise",
				IsActive:     true,
			}
			if err := db.Create(&profile).Error; err != nil {
				log.Fatalf("failed to create super admin account: %v", err)
			}
			recordBootstrap(db, profile.ID, `{"new_role":"superAdmin","source":"seed","created":true}`)
			fmt.Println("created super admin account:", bootstrapEmail)

		default:
			log.Fatalf("failed to look up account: %v", err)
		}
	},
}

func recordBootstrap(db *gorm.DB, userID int64, details string) {
	entry := datamodel.ActivityLog{
		UserID:  &userID,
		Action:  "role_updated",
		Details: details,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("warning: failed to record bootstrap audit entry: %v", err)
	}
}
