package repository

import (
	"servicehub/internal/models"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

func (r *CategoryRepository) Create(c *models.Category) error {
	return r.db.Create(c).Error
}

func (r *CategoryRepository) GetByID(id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List() ([]models.Category, error) {
	var list []models.Category
	err := r.db.Order("name ASC").Find(&list).Error
	return list, err
}

// SeedDefaults inserts the named categories that don't exist yet.
func (r *CategoryRepository) SeedDefaults(names []string) error {
	for _, name := range names {
		var count int64
		if err := r.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := r.db.Create(&models.Category{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
