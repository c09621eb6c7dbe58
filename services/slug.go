package services

import (
	"fmt"
	"strings"

	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// uniqueSlug slugifies base and appends -2, -3... until no other row of
// model uses it. excludeID skips the row being updated.
func uniqueSlug(tx *gorm.DB, model interface{}, base string, excludeID uint) (string, error) {
	slug := utils.Slugify(base)
	if slug == "" {
		slug = strings.ToLower(utils.ShortID(8))
	}

	candidate := slug
	for i := 2; ; i++ {
		var count int64
		query := tx.Model(model).Where("slug = ?", candidate)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", errors.Wrap(err, "check slug")
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
}
