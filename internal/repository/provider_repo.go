package repository

import (
	"servicehub/internal/models"

	"gorm.io/gorm"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) WithTx(tx *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: tx}
}

func (r *ProviderRepository) Create(p *models.Provider) error {
	return r.db.Create(p).Error
}

func (r *ProviderRepository) GetByUserID(userID uint) (*models.Provider, error) {
	var p models.Provider
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderRepository) Update(p *models.Provider) error {
	return r.db.Save(p).Error
}

// AddRating folds one booking rating into the provider's running average.
func (r *ProviderRepository) AddRating(userID uint, rating int) error {
	return r.db.Model(&models.Provider{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"rating_sum":   gorm.Expr("rating_sum + ?", rating),
			"rating_count": gorm.Expr("rating_count + 1"),
		}).Error
}
