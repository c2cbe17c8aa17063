package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// DefaultLimit est la taille de page par défaut, surchargée au démarrage
// depuis la config (API_PAGE_SIZE).
var DefaultLimit = 10

type Params struct {
	Limit  int
	Offset int
}

// Parse lit ?limit= et ?offset=. Les valeurs invalides sont ignorées.
func Parse(c *gin.Context) Params {
	p := Params{Limit: DefaultLimit}

	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Offset = v
		}
	}

	return p
}

// Envelope construit la réponse paginée {count, next, previous, results}.
// next et previous valent null quand la page n'existe pas.
func Envelope(c *gin.Context, count int64, p Params, results interface{}) gin.H {
	var next, previous interface{}

	if int64(p.Offset+p.Limit) < count {
		next = pageLink(c, p.Limit, p.Offset+p.Limit)
	}
	if p.Offset > 0 {
		prevOffset := p.Offset - p.Limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		previous = pageLink(c, p.Limit, prevOffset)
	}

	return gin.H{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	}
}

func pageLink(c *gin.Context, limit, offset int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
