package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDeriveUsername(t *testing.T) {
	assert.Equal(t, "tony.stark", DeriveUsername("Tony Stark"))
	assert.Equal(t, "peter.benjamin.parker", DeriveUsername(" Peter Benjamin Parker "))
	assert.Equal(t, "thor", DeriveUsername("Thor"))
}

func TestDeriveTempPassword(t *testing.T) {
	assert.Equal(t, "Stark3", DeriveTempPassword("Tony Stark", "Stark", 3))
	assert.Equal(t, "Odinson12", DeriveTempPassword("Thor", "Odinson", 12))
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query  string
		page   int
		limit  int
		offset int
	}{
		{"", 1, 20, 0},
		{"page=3&limit=10", 3, 10, 20},
		{"page=0&limit=1000", 1, 20, 0},
		{"page=abc", 1, 20, 0},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/api/v1/members?"+tc.query, nil)

		params := GetPaginationParams(c)
		assert.Equal(t, tc.page, params.Page, tc.query)
		assert.Equal(t, tc.limit, params.Limit, tc.query)
		assert.Equal(t, tc.offset, params.Offset, tc.query)
	}
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 2, Limit: 10, Offset: 10}, 21)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(21), resp.Total)
}
