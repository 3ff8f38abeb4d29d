package db

import (
	"log"
	"os"

	"hallway/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=hallway port=5432 sslmode=disable TimeZone=UTC"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedRooms()
}

// Migrate runs the schema migration. Split out from Init so tests can run it
// against their own database handle.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&models.User{},
		&models.Username{},
		&models.Post{},
		&models.Comment{},
		&models.Rating{},
		&models.Report{},
		&models.Room{},
		&models.ChatMessage{},
	)
}

func seedRooms() {
	var count int64
	DB.Model(&models.Room{}).Count(&count)
	if count > 0 {
		log.Println("Rooms already seeded, skipping")
		return
	}

	rooms := []models.Room{
		{Name: "public", Kind: models.RoomKindPublic, Description: "Chat with your username visible to everyone"},
		{Name: "anon", Kind: models.RoomKindAnon, Description: "Chat with a randomized anonymous name"},
	}

	for _, room := range rooms {
		if err := DB.Create(&room).Error; err != nil {
			log.Printf("Failed to create room %s: %v", room.Name, err)
		}
	}
	log.Println("Initial chat rooms created")
}
