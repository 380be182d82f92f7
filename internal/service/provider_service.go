package service

import (
	"context"
	"errors"
	"strings"

	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"

	"gorm.io/gorm"
)

// ProviderProfile is the public view of a provider.
type ProviderProfile struct {
	UserID        uint    `json:"user_id"`
	DisplayName   string  `json:"display_name"`
	Bio           string  `json:"bio"`
	CategoryID    *uint   `json:"category_id"`
	IsActive      bool    `json:"is_active"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
	AvatarURL     string  `json:"avatar_url"`
}

type UpdateProviderInput struct {
	DisplayName *string
	Bio         *string
	CategoryID  *uint
	IsActive    *bool
}

// ProviderService serves provider profiles and the category catalogue they are filed under.
type ProviderService struct {
	db         *gorm.DB
	providers  *repository.ProviderRepository
	users      *repository.UserRepository
	categories *repository.CategoryRepository
}

func NewProviderService(db *gorm.DB) *ProviderService {
	return &ProviderService{
		db:         db,
		providers:  repository.NewProviderRepository(db),
		users:      repository.NewUserRepository(db),
		categories: repository.NewCategoryRepository(db),
	}
}

func (s *ProviderService) GetProfile(ctx context.Context, userID uint) (*ProviderProfile, error) {
	db := s.db.WithContext(ctx)
	p, err := s.providers.WithTx(db).GetByUserID(userID)
	if err != nil {
		return nil, lookupErr(err, "provider not found", "ProviderService.GetProfile")
	}
	u, err := s.users.WithTx(db).GetByID(userID)
	if err != nil {
		return nil, lookupErr(err, "provider not found", "ProviderService.GetProfile")
	}
	return toProfile(p, u), nil
}

func (s *ProviderService) UpdateProfile(ctx context.Context, actor domain.Actor, in UpdateProviderInput) (*ProviderProfile, error) {
	if !actor.IsProvider() {
		return nil, domain.Forbidden("only providers have a provider profile")
	}
	db := s.db.WithContext(ctx)
	p, err := s.providers.WithTx(db).GetByUserID(actor.ID)
	if err != nil {
		return nil, lookupErr(err, "provider not found", "ProviderService.UpdateProfile")
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, domain.Validation("display name cannot be empty")
		}
		p.DisplayName = name
	}
	if in.Bio != nil {
		p.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.CategoryID != nil {
		if _, err := s.categories.WithTx(db).GetByID(*in.CategoryID); err != nil {
			return nil, lookupErr(err, "category not found", "ProviderService.UpdateProfile")
		}
		p.CategoryID = in.CategoryID
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.providers.WithTx(db).Update(p); err != nil {
		return nil, domain.Unexpected("ProviderService.UpdateProfile", err)
	}
	return s.GetProfile(ctx, actor.ID)
}

func (s *ProviderService) ListCategories(ctx context.Context) ([]models.Category, error) {
	list, err := s.categories.WithTx(s.db.WithContext(ctx)).List()
	if err != nil {
		return nil, domain.Unexpected("ProviderService.ListCategories", err)
	}
	return list, nil
}

// CreateCategory is admin only.
func (s *ProviderService) CreateCategory(ctx context.Context, actor domain.Actor, name, description string) (*models.Category, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("admin access required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("category name is required")
	}
	c := &models.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.categories.WithTx(s.db.WithContext(ctx)).Create(c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("category already exists")
		}
		return nil, domain.Unexpected("ProviderService.CreateCategory", err)
	}
	return c, nil
}

func toProfile(p *models.Provider, u *models.User) *ProviderProfile {
	return &ProviderProfile{
		UserID:        p.UserID,
		DisplayName:   p.DisplayName,
		Bio:           p.Bio,
		CategoryID:    p.CategoryID,
		IsActive:      p.IsActive,
		AverageRating: p.AverageRating(),
		RatingCount:   p.RatingCount,
		AvatarURL:     u.AvatarURL,
	}
}
