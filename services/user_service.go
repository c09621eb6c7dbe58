package services

import (
	"context"
	"strings"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService mirrors identity provider accounts into the local users table
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Identity is what the identity provider tells us about a person
type Identity struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
	ImageURL  string
	Role      string
}

// Resolve returns the local user for a verified identity, creating a customer on first sight
func (s *UserService) Resolve(ctx context.Context, id Identity) (*models.User, error) {
	if id.ClerkID == "" {
		return nil, utils.UnauthorizedError("Token has no subject", nil)
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("clerk_id = ?", id.ClerkID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "load user")
	}

	user = models.User{
		ClerkID:   id.ClerkID,
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		ImageURL:  id.ImageURL,
		Role:      models.RoleCustomer,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "create user")
	}
	if res.RowsAffected == 0 {
		// created concurrently by another request or the webhook
		if err := s.db.WithContext(ctx).Where("clerk_id = ?", id.ClerkID).First(&user).Error; err != nil {
			return nil, errors.Wrap(err, "reload user")
		}
		return &user, nil
	}
	utils.LogInfo("User %d created for clerk id %s", user.ID, id.ClerkID)
	return &user, nil
}

// Sync creates or updates the user from a webhook payload. A role is only
// written when the identity provider sends one.
func (s *UserService) Sync(ctx context.Context, id Identity) (*models.User, error) {
	user, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"email":      id.Email,
		"first_name": id.FirstName,
		"last_name":  id.LastName,
		"image_url":  id.ImageURL,
	}
	if id.Role == models.RoleAdmin || id.Role == models.RoleCustomer {
		updates["role"] = id.Role
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "sync user")
	}
	return s.Get(ctx, user.ID)
}

// DeleteByClerkID removes a user and detaches everything that referenced them.
// Orders and posts are kept for bookkeeping.
func (s *UserService) DeleteByClerkID(ctx context.Context, clerkID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return errors.Wrap(err, "load user")
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Address{}).Error; err != nil {
			return errors.Wrap(err, "delete addresses")
		}
		var cartIDs []uint
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", user.ID).Pluck("id", &cartIDs).Error; err != nil {
			return errors.Wrap(err, "find cart")
		}
		if len(cartIDs) > 0 {
			if err := tx.Where("cart_id IN ?", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
				return errors.Wrap(err, "delete cart items")
			}
			if err := tx.Where("id IN ?", cartIDs).Delete(&models.Cart{}).Error; err != nil {
				return errors.Wrap(err, "delete cart")
			}
		}
		if err := tx.Model(&models.Order{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach orders")
		}
		if err := tx.Model(&models.Post{}).Where("author_id = ?", user.ID).Update("author_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach posts")
		}
		if err := tx.Delete(&user).Error; err != nil {
			return errors.Wrap(err, "delete user")
		}
		utils.LogInfo("User %d (%s) deleted", user.ID, clerkID)
		return nil
	})
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("User not found", nil)
		}
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

// List returns one page of users, optionally filtered by role or a name/email search
func (s *UserService) List(ctx context.Context, role, search string, p *utils.Pagination) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count users")
	}
	p.SetTotal(total)

	var users []models.User
	if err := query.Order("created_at DESC, id DESC").Offset(p.Offset).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

// SetRole changes a user's role. Admins cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, actor *models.User, id uint, role string) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleCustomer {
		return nil, utils.InvalidInput("Role must be %s or %s", models.RoleCustomer, models.RoleAdmin)
	}
	if actor != nil && actor.ID == id && role != models.RoleAdmin {
		return nil, utils.InvalidState("You cannot remove your own admin role")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, errors.Wrap(err, "update role")
	}
	user.Role = role
	utils.LogInfo("User %d role set to %s", id, role)
	return user, nil
}
