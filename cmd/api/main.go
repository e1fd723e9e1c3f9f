package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/gigconnect/gigconnect_be/internal/config"
	"github.com/gigconnect/gigconnect_be/internal/db"
	"github.com/gigconnect/gigconnect_be/internal/models"
	"github.com/gigconnect/gigconnect_be/internal/router"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Gig{},
		&models.Application{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		log.Fatal(err)
	}

	app := router.New(cfg, gdb)

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
