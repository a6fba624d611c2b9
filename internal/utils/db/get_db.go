package db

import (
	"os"
	"strconv"

	"gorm.io/gorm"
)

// GetDB construit la connexion à partir des variables d'environnement.
func GetDB() (*gorm.DB, error) {
	host := os.Getenv("DB_HOST")
	port, err := strconv.ParseUint(os.Getenv("DB_PORT"), 10, 32)
	if err != nil {
		port = 5432 // port Postgres par défaut
	}

	name := os.Getenv("DB_NAME")
	username := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	return ConnectDataBase(uint(port), host, name, username, password)
}
