package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CategoryService struct {
	db    *gorm.DB
	cache *ProductCache
}

func NewCategoryService(db *gorm.DB, cache *ProductCache) *CategoryService {
	return &CategoryService{db: db, cache: cache}
}

// CategoryInput is the writable part of a category
type CategoryInput struct {
	Name          string   `json:"name" binding:"required"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Subcategories []string `json:"subcategories"`
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, errors.Wrap(err, "list categories")
}

// Get finds a category by numeric id or slug
func (s *CategoryService) Get(ctx context.Context, key string) (*models.Category, error) {
	query := s.db.WithContext(ctx)
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", key)
	}
	var category models.Category
	if err := query.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Category not found", nil)
		}
		return nil, errors.Wrap(err, "get category")
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, utils.InvalidInput("Category name is required")
	}
	category := models.Category{
		Name:          in.Name,
		Description:   in.Description,
		Subcategories: models.JoinList(in.Subcategories),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := in.Slug
		if base == "" {
			base = in.Name
		}
		slug, err := uniqueSlug(tx, &models.Category{}, base, 0)
		if err != nil {
			return err
		}
		category.Slug = slug
		return errors.Wrap(tx.Create(&category).Error, "create category")
	})
	if err != nil {
		return nil, err
	}
	category.SubcategoryList = models.SplitList(category.Subcategories)
	utils.LogInfo("Category %d %q created", category.ID, category.Name)
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, utils.InvalidInput("Category name is required")
	}
	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Category not found", nil)
			}
			return errors.Wrap(err, "load category")
		}
		if in.Slug != "" && utils.Slugify(in.Slug) != category.Slug {
			slug, err := uniqueSlug(tx, &models.Category{}, in.Slug, category.ID)
			if err != nil {
				return err
			}
			category.Slug = slug
		}
		category.Name = in.Name
		category.Description = in.Description
		category.Subcategories = models.JoinList(in.Subcategories)
		return errors.Wrap(tx.Save(&category).Error, "update category")
	})
	if err != nil {
		return nil, err
	}
	category.SubcategoryList = models.SplitList(category.Subcategories)
	s.cache.Invalidate(ctx)
	return &category, nil
}

// Delete removes a category; its products become uncategorized
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return errors.Wrap(err, "uncategorize products")
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete category")
		}
		if res.RowsAffected == 0 {
			return utils.NotFoundError("Category not found", nil)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	utils.LogInfo("Category %d deleted", id)
	return nil
}
