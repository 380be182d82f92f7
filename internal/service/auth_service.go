package service

import (
	"context"
	"errors"
	"strings"

	"servicehub/config"
	"servicehub/internal/auth"
	"servicehub/internal/domain"
	"servicehub/internal/models"
	"servicehub/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists  = domain.Conflict("email already registered")
	ErrInvalidCreds = errors.New("invalid email or password")

	ErrGoogleEmailUnverified = domain.Forbidden("google email is not verified")
	ErrGoogleLinkRefused     = domain.Forbidden("this account cannot sign in with google")
)

type AuthService struct {
	cfg       *config.Config
	db        *gorm.DB
	userRepo  *repository.UserRepository
	providers *repository.ProviderRepository
	wallets   *repository.WalletRepository
}

func NewAuthService(cfg *config.Config, db *gorm.DB) *AuthService {
	return &AuthService{
		cfg:       cfg,
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		providers: repository.NewProviderRepository(db),
		wallets:   repository.NewWalletRepository(db),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
	Bio      string
	// CategoryID is the provider's primary category; ignored for clients.
	CategoryID *uint
}

// Register creates a CLIENT or PROVIDER account. Providers get their profile and an empty wallet in
// the same transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *auth.TokenPair, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = domain.RoleClient
	}
	if in.Role != domain.RoleClient && in.Role != domain.RoleProvider {
		return nil, nil, domain.Validation("role must be CLIENT or PROVIDER")
	}
	if in.Name == "" || in.Email == "" || len(in.Password) < 6 {
		return nil, nil, domain.Validation("name, email and a password of at least 6 characters are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, domain.Unexpected("AuthService.Register", err)
	}
	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		if _, err := users.GetByEmail(u.Email); err == nil {
			return ErrEmailExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Unexpected("AuthService.Register", err)
		}
		if err := users.Create(u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return domain.Unexpected("AuthService.Register", err)
		}
		if u.IsProvider() {
			return s.openProviderAccount(tx, u, in.Bio, in.CategoryID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	tokens, err := auth.GeneratePair(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, nil, domain.Unexpected("AuthService.Register", err)
	}
	return u, tokens, nil
}

func (s *AuthService) openProviderAccount(tx *gorm.DB, u *models.User, bio string, categoryID *uint) error {
	if categoryID != nil {
		if _, err := repository.NewCategoryRepository(tx).GetByID(*categoryID); err != nil {
			return lookupErr(err, "category not found", "AuthService.Register")
		}
	}
	p := &models.Provider{UserID: u.ID, DisplayName: u.Name, Bio: bio, CategoryID: categoryID, IsActive: true}
	if err := s.providers.WithTx(tx).Create(p); err != nil {
		return domain.Unexpected("AuthService.Register provider", err)
	}
	w := &models.Wallet{UserID: u.ID, Currency: s.cfg.Marketplace.Currency}
	if err := s.wallets.WithTx(tx).Create(w); err != nil {
		return domain.Unexpected("AuthService.Register wallet", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *auth.TokenPair, error) {
	u, err := s.userRepo.WithTx(s.db.WithContext(ctx)).GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCreds
		}
		return nil, nil, domain.Unexpected("AuthService.Login", err)
	}
	if u.PasswordHash == "" {
		return nil, nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCreds
	}
	tokens, err := auth.GeneratePair(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, nil, domain.Unexpected("AuthService.Login", err)
	}
	return u, tokens, nil
}

// LoginWithGoogle finds the user by Google ID, links Google to an existing email account, or
// creates a new CLIENT. Unknown Google IDs need a verified email. ADMIN accounts and accounts
// already tied to another Google ID are never linked.
// The bool reports whether the account is new.
func (s *AuthService) LoginWithGoogle(ctx context.Context, googleID, email string, emailVerified bool, name, avatarURL string) (*models.User, *auth.TokenPair, bool, error) {
	users := s.userRepo.WithTx(s.db.WithContext(ctx))
	email = strings.ToLower(strings.TrimSpace(email))
	created := false
	u, err := users.GetByGoogleID(googleID)
	switch {
	case err == nil:
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, false, domain.Unexpected("AuthService.LoginWithGoogle", err)
	case !emailVerified:
		return nil, nil, false, ErrGoogleEmailUnverified
	default:
		gid := googleID
		existing, lookup := users.GetByEmail(email)
		if lookup == nil {
			if existing.Role == domain.RoleAdmin || existing.GoogleID != nil {
				return nil, nil, false, ErrGoogleLinkRefused
			}
			// Link Google to existing account
			existing.GoogleID = &gid
			if avatarURL != "" {
				existing.AvatarURL = avatarURL
			}
			if err := users.Update(existing); err != nil {
				return nil, nil, false, domain.Unexpected("AuthService.LoginWithGoogle", err)
			}
			u = existing
			break
		}
		if !errors.Is(lookup, gorm.ErrRecordNotFound) {
			return nil, nil, false, domain.Unexpected("AuthService.LoginWithGoogle", lookup)
		}
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		u = &models.User{Name: name, Email: email, GoogleID: &gid, Role: domain.RoleClient, AvatarURL: avatarURL}
		if err := users.Create(u); err != nil {
			return nil, nil, false, domain.Unexpected("AuthService.LoginWithGoogle", err)
		}
		created = true
	}
	tokens, err := auth.GeneratePair(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, nil, false, domain.Unexpected("AuthService.LoginWithGoogle", err)
	}
	return u, tokens, created, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.WithTx(s.db.WithContext(ctx)).GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, domain.Unexpected("AuthService.RefreshToken", err)
	}
	tokens, err := auth.GeneratePair(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, domain.Unexpected("AuthService.RefreshToken", err)
	}
	return tokens, nil
}

func (s *AuthService) Me(ctx context.Context, actor domain.Actor) (*models.User, error) {
	u, err := s.userRepo.WithTx(s.db.WithContext(ctx)).GetByID(actor.ID)
	if err != nil {
		return nil, lookupErr(err, "user not found", "AuthService.Me")
	}
	return u, nil
}
