package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "vot-yonex-astrox-88d", Slugify("Vợt Yonex Astrox 88D"))
	assert.Equal(t, "giay-cau-long", Slugify("  Giày cầu lông!! "))
	assert.Equal(t, "", Slugify("---"))
}

func TestShortID(t *testing.T) {
	id := ShortID(6)
	assert.Len(t, id, 6)
	assert.Equal(t, strings.ToUpper(id), id)
}

func TestVietQRImageURL(t *testing.T) {
	q := VietQR{BankID: "vietcombank", AccountNo: "0123456789", AccountName: "SHUTTLEHUB"}

	raw := q.ImageURL(decimal.NewFromInt(850000), "ORD-20250101-ABC123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "img.vietqr.io", u.Host)
	assert.Equal(t, "/image/vietcombank-0123456789-compact2.png", u.Path)
	assert.Equal(t, "850000", u.Query().Get("amount"))
	assert.Equal(t, "ORD-20250101-ABC123", u.Query().Get("addInfo"))
	assert.Equal(t, "SHUTTLEHUB", u.Query().Get("accountName"))
	assert.True(t, q.Configured())
	assert.False(t, VietQR{}.Configured())
}

func TestParseStoreTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	local, err := ParseStoreTime("2025-03-01T00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 17, 0, 0, 0, time.UTC), local.UTC())

	explicit, err := ParseStoreTime("2025-03-01T00:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), explicit.UTC())

	_, err = ParseStoreTime("next tuesday", loc)
	assert.Error(t, err)
}

func TestGetAppErrorThroughWrapping(t *testing.T) {
	base := NotFoundError("Order not found", nil)
	wrapped := pkgerrors.Wrap(base, "load order")

	got := GetAppError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, http.StatusNotFound, got.Code)
	assert.True(t, IsNotFoundError(wrapped))
	assert.Nil(t, GetAppError(errors.New("plain")))
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, InsufficientStock("Astrox 88D", 1, 3))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient stock for Astrox 88D")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondError(c, errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("0912345678"))
	assert.True(t, IsValidPhone("+84 912 345 678"))
	assert.False(t, IsValidPhone("12345"))
}
