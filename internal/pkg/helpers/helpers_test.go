package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 10)
	assert.Equal(t, uint64(20), offset)
	assert.Equal(t, 10, limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	info = NewPaginationInfo(5, 9, 20)
	assert.Equal(t, 1, info.CurrentPage)

	info = NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, info.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=4&size=5", nil)

	page, size := ParsePaginationParams(c)
	assert.Equal(t, 4, page)
	assert.Equal(t, 5, size)

	c.Request = httptest.NewRequest("GET", "/?page=x&size=500", nil)
	page, size = ParsePaginationParams(c)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestTrimHelpers(t *testing.T) {
	assert.Nil(t, TrimmedOrNil("   "))
	got := TrimmedOrNil("  notes ")
	require.NotNil(t, got)
	assert.Equal(t, "notes", *got)

	assert.Nil(t, TrimPtr(nil))
	in := " x "
	assert.Equal(t, "x", *TrimPtr(&in))
	assert.Equal(t, "", StringValue(nil))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("never", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("  ", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-5s", time.Minute))
	assert.Equal(t, time.Duration(0), ParseDuration("0s", time.Minute))
}
