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

type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// PostInput is the writable part of a blog post
type PostInput struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	CoverImage  string `json:"cover_image"`
	IsPublished bool   `json:"is_published"`
}

// List returns one page of posts; drafts are only included when asked for
func (s *PostService) List(ctx context.Context, includeDrafts bool, p *utils.Pagination) ([]models.Post, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{})
	if !includeDrafts {
		query = query.Where("is_published = ?", true)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count posts")
	}
	p.SetTotal(total)

	var posts []models.Post
	err := query.Preload("Author").
		Order("created_at DESC, id DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&posts).Error
	return posts, errors.Wrap(err, "list posts")
}

// Get finds a post by id or slug
func (s *PostService) Get(ctx context.Context, key string, includeDrafts bool) (*models.Post, error) {
	query := s.db.WithContext(ctx).Preload("Author")
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", key)
	}
	if !includeDrafts {
		query = query.Where("is_published = ?", true)
	}

	var post models.Post
	if err := query.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Post not found", nil)
		}
		return nil, errors.Wrap(err, "get post")
	}
	return &post, nil
}

func (s *PostService) Create(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, utils.InvalidInput("Post title is required")
	}

	post := models.Post{
		Title:       in.Title,
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		CoverImage:  in.CoverImage,
		IsPublished: in.IsPublished,
	}
	if author != nil {
		post.AuthorID = &author.ID
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := in.Slug
		if base == "" {
			base = in.Title
		}
		slug, err := uniqueSlug(tx, &models.Post{}, base, 0)
		if err != nil {
			return err
		}
		post.Slug = slug
		return errors.Wrap(tx.Create(&post).Error, "create post")
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Post %d %q created", post.ID, post.Title)
	return &post, nil
}

func (s *PostService) Update(ctx context.Context, id uint, in PostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, utils.InvalidInput("Post title is required")
	}

	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Post not found", nil)
			}
			return errors.Wrap(err, "load post")
		}
		if in.Slug != "" && utils.Slugify(in.Slug) != post.Slug {
			slug, err := uniqueSlug(tx, &models.Post{}, in.Slug, post.ID)
			if err != nil {
				return err
			}
			post.Slug = slug
		}
		post.Title = in.Title
		post.Excerpt = in.Excerpt
		post.Content = in.Content
		post.CoverImage = in.CoverImage
		post.IsPublished = in.IsPublished
		return errors.Wrap(tx.Save(&post).Error, "update post")
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete post")
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundError("Post not found", nil)
	}
	return nil
}
