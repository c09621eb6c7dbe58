package services

import (
	"context"
	"strings"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AddressService manages a customer's shipping addresses. At most one address
// per user is the default, and it is only ever toggled inside a transaction.
type AddressService struct {
	db *gorm.DB
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// AddressInput is the writable part of an address
type AddressInput struct {
	FullName  string `json:"full_name" binding:"required"`
	Phone     string `json:"phone" binding:"required,phone"`
	Street    string `json:"street" binding:"required"`
	Ward      string `json:"ward"`
	District  string `json:"district"`
	City      string `json:"city" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

func (in *AddressInput) normalize() error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Street = strings.TrimSpace(in.Street)
	in.Ward = strings.TrimSpace(in.Ward)
	in.District = strings.TrimSpace(in.District)
	in.City = strings.TrimSpace(in.City)
	if in.FullName == "" || in.Street == "" || in.City == "" {
		return utils.InvalidInput("Full name, street and city are required")
	}
	if !utils.IsValidPhone(in.Phone) {
		return utils.InvalidInput("Invalid phone number")
	}
	return nil
}

func (s *AddressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	var addresses []models.Address
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&addresses).Error
	return addresses, errors.Wrap(err, "list addresses")
}

func (s *AddressService) get(tx *gorm.DB, userID, id uint) (*models.Address, error) {
	var addr models.Address
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Address not found", nil)
		}
		return nil, errors.Wrap(err, "get address")
	}
	return &addr, nil
}

func (s *AddressService) Get(ctx context.Context, userID, id uint) (*models.Address, error) {
	return s.get(s.db.WithContext(ctx), userID, id)
}

func clearDefault(tx *gorm.DB, userID uint) error {
	err := tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	return errors.Wrap(err, "clear default address")
}

// Create stores a new address; the first one a user saves becomes the default
func (s *AddressService) Create(ctx context.Context, userID uint, in AddressInput) (*models.Address, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	addr := models.Address{
		UserID:    userID,
		FullName:  in.FullName,
		Phone:     in.Phone,
		Street:    in.Street,
		Ward:      in.Ward,
		District:  in.District,
		City:      in.City,
		IsDefault: in.IsDefault,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count addresses")
		}
		if count == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
		}
		return errors.Wrap(tx.Create(&addr).Error, "create address")
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Address %d created for user %d", addr.ID, userID)
	return &addr, nil
}

func (s *AddressService) Update(ctx context.Context, userID, id uint, in AddressInput) (*models.Address, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var addr *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if addr, err = s.get(tx, userID, id); err != nil {
			return err
		}
		if in.IsDefault && !addr.IsDefault {
			if err := clearDefault(tx, userID); err != nil {
				return err
			}
			addr.IsDefault = true
		}
		addr.FullName = in.FullName
		addr.Phone = in.Phone
		addr.Street = in.Street
		addr.Ward = in.Ward
		addr.District = in.District
		addr.City = in.City
		return errors.Wrap(tx.Save(addr).Error, "update address")
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// Delete removes an address. When it was the default, the most recent
// remaining address takes over.
func (s *AddressService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addr, err := s.get(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(addr).Error; err != nil {
			return errors.Wrap(err, "delete address")
		}
		if !addr.IsDefault {
			return nil
		}

		var next models.Address
		err = tx.Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "find next default address")
		}
		return errors.Wrap(tx.Model(&next).Update("is_default", true).Error, "promote default address")
	})
}

// SetDefault makes one address the user's default
func (s *AddressService) SetDefault(ctx context.Context, userID, id uint) (*models.Address, error) {
	var addr *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if addr, err = s.get(tx, userID, id); err != nil {
			return err
		}
		if err := clearDefault(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(addr).Update("is_default", true).Error; err != nil {
			return errors.Wrap(err, "set default address")
		}
		addr.IsDefault = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Address %d is now the default for user %d", id, userID)
	return addr, nil
}
