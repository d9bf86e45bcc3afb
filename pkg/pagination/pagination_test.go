package pagination_test

import (
	"net/http/httptest"
	"testing"

	"renthub/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(query string) *pagination.PageParams {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return pagination.ParsePageParams(c)
}

func TestParsePageParams(t *testing.T) {
	p := paramsFor("page=3&page_size=25")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.PageSize)
	assert.Equal(t, 50, p.GetOffset())
	assert.Equal(t, 25, p.GetLimit())

	// defaults
	p = paramsFor("")
	assert.Equal(t, pagination.DefaultPage, p.Page)
	assert.Equal(t, pagination.DefaultPageSize, p.PageSize)

	// garbage and out-of-range values fall back
	p = paramsFor("page=zero&page_size=-4")
	assert.Equal(t, pagination.DefaultPage, p.Page)
	assert.Equal(t, pagination.DefaultPageSize, p.PageSize)

	p = paramsFor("page_size=5000")
	assert.Equal(t, pagination.MaxPageSize, p.PageSize)
}

func TestNewPageInfo(t *testing.T) {
	info := pagination.NewPageInfo(2, 10, 35)
	assert.Equal(t, 4, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	info = pagination.NewPageInfo(1, 10, 5)
	assert.Equal(t, 1, info.TotalPages)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrev)

	info = pagination.NewPageInfo(1, 10, 0)
	assert.Equal(t, 0, info.TotalPages)
	assert.False(t, info.HasNext)
}
