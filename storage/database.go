package storage

import (
	"log"
	"os"

	"may-space-server/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

// Migrate runs AutoMigrate plus the raw index fixups GORM cannot express.
// Exposed so tests can run the same schema against their own database.
func Migrate(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Unit{},
		&models.Booking{},
		&models.Inquiry{},
		&models.PasswordOTP{},
		&models.AuditLog{},
	)

	// One confirmed booking per unit, enforced at the database level so two
	// concurrent confirms cannot both win.
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_one_confirmed_per_unit
		ON bookings (unit_id) WHERE status = 'confirmed' AND deleted_at IS NULL;`)

	// One active (pending or confirmed) booking per (unit, user) pair. A prior
	// denied booking does not block a new request.
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_one_active_per_unit_user
		ON bookings (unit_id, user_id) WHERE status IN ('pending', 'confirmed') AND deleted_at IS NULL;`)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	Migrate(db)
	return db
}
