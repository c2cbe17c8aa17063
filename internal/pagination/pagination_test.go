package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParse(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedLimit  int
		expectedOffset int
	}{
		{
			name:           "Defaults when no params",
			target:         "/api/v1/posts",
			expectedLimit:  DefaultLimit,
			expectedOffset: 0,
		},
		{
			name:           "Explicit limit and offset",
			target:         "/api/v1/posts?limit=2&offset=4",
			expectedLimit:  2,
			expectedOffset: 4,
		},
		{
			name:           "Invalid values ignored",
			target:         "/api/v1/posts?limit=abc&offset=-3",
			expectedLimit:  DefaultLimit,
			expectedOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(newTestContext(tt.target))
			assert.Equal(t, tt.expectedLimit, p.Limit)
			assert.Equal(t, tt.expectedOffset, p.Offset)
		})
	}
}

func TestEnvelope(t *testing.T) {
	c := newTestContext("/api/v1/posts?limit=2&offset=2")
	p := Params{Limit: 2, Offset: 2}

	env := Envelope(c, 5, p, []gin.H{})

	assert.Equal(t, int64(5), env["count"])

	next, ok := env["next"].(string)
	assert.True(t, ok)
	assert.Contains(t, next, "offset=4")
	assert.Contains(t, next, "limit=2")

	// l'offset retombe à 0, le paramètre disparaît du lien précédent
	previous, ok := env["previous"].(string)
	assert.True(t, ok)
	assert.NotContains(t, previous, "offset")
	assert.Contains(t, previous, "limit=2")
}

func TestEnvelopeSinglePage(t *testing.T) {
	c := newTestContext("/api/v1/posts")
	p := Params{Limit: 10, Offset: 0}

	env := Envelope(c, 3, p, []gin.H{})

	assert.Nil(t, env["next"])
	assert.Nil(t, env["previous"])
}
