package auth

import (
	"log"

	"quiz-arena/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetClientByUsername(username string) (*models.Client, error) {
	var client models.Client
	result := r.db.Where("username = ?", username).First(&client)
	if result.Error != nil {
		log.Printf("Error finding client %s: %v", username, result.Error)
		return nil, result.Error
	}
	return &client, nil
}

func (r *Repository) CreateClient(client *models.Client) error {
	return r.db.Create(client).Error
}
