package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"route_dispatch/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment variables,
// migrates the schema and seeds the bootstrap super-admin account.
func InitDB() {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	// Load environment variables (with defaults)
	host := GetEnv("DB_HOST", "localhost")
	port := GetEnv("DB_PORT", "5432")
	user := GetEnv("DB_USER", "postgres")
	password := GetEnv("DB_PASSWORD", "password")
	dbname := GetEnv("DB_NAME", "dispatch")
	sslmode := GetEnv("DB_SSLMODE", "disable")
	timezone := GetEnv("DB_TIMEZONE", "UTC")

	// Build Data Source Name
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	// Open GORM connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.CustomerDocument{},
		&models.Route{},
		&models.Stop{},
		&models.SafetyDeclaration{},
		&models.SystemDocument{},
		&models.DocumentAcknowledgment{},
		&models.Vehicle{},
		&models.VehicleAssignment{},
		&models.DriverLocation{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			log.Fatalf("index migration failed: %v", err)
		}
	}

	// Assign to global
	DB = db

	seedSuperAdmin(db)
}

// partialIndexes are the unique indexes gorm struct tags cannot express.
// Postgres treats NULLs as distinct, so routeless acknowledgments and
// declarations need their own uniqueness over the non-route columns, and a
// username is only reserved while its account is live.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ack_once_routeless ON document_acknowledgments (document_id, driver_id) WHERE route_id IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_safety_once_routeless ON safety_declarations (driver_id, declaration_type) WHERE route_id IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_live ON users (username) WHERE is_deleted = false`,
}

// seedSuperAdmin creates the bootstrap SUPER_ADMIN account when no live one
// exists. Credentials come from SEED_ADMIN_USER / SEED_ADMIN_PASSWORD.
func seedSuperAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).
		Where("role = ? AND is_deleted = ?", models.RoleSuperAdmin, false).
		Count(&count)
	if count > 0 {
		return
	}

	username := GetEnv("SEED_ADMIN_USER", "superadmin")
	password := GetEnv("SEED_ADMIN_PASSWORD", "changeme")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("seed: could not hash password: %v", err)
	}

	admin := models.User{
		Username: username,
		Password: string(hash),
		FullName: "System Administrator",
		Role:     models.RoleSuperAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("seed: could not create super admin: %v", err)
		return
	}
	log.Printf("seed: created super admin %q", username)
}

// GetEnv reads an environment variable or returns the provided default
func GetEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
