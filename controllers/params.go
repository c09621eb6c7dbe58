package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// pathID reads the :id parameter, writing a 400 when it is not a positive integer
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequest(c, "Invalid id", nil)
		return 0, false
	}
	return uint(id), true
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, utils.InvalidInput("%s must be a number", key)
	}
	return &d, nil
}

func queryTime(c *gin.Context, key string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseStoreTime(raw, loc)
	if err != nil {
		return nil, utils.InvalidInput("%s: %v", key, err)
	}
	return &t, nil
}
