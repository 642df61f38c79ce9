// Package pagination turns page/size query parameters into bounded
// limit/offset queries over gorm.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jingxin-guardian/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	queryPage = "page"
	querySize = "size"

	DefaultPage = 1
	DefaultSize = 10
	// MaxSize caps a single page; talk-record lists grow unbounded over the
	// life of a deployment and must not be fetchable in one request.
	MaxSize = 100
)

// Query holds validated paging parameters. Zero values never occur when it
// comes out of FromContext.
type Query struct {
	Page int
	Size int
}

// FromContext reads page/size from the request, substituting defaults for
// anything missing, malformed or out of range.
func FromContext(c *gin.Context) Query {
	q := Query{
		Page: atoiOr(c.Query(queryPage), DefaultPage),
		Size: atoiOr(c.Query(querySize), DefaultSize),
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Size > MaxSize {
		q.Size = MaxSize
	}
	return q
}

// Paginate counts, then fetches the requested window into dest. The count
// and the fetch run against the same base query, so any filters applied by
// the caller hold for both.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	if total > 0 {
		offset := (q.Page - 1) * q.Size
		if err := db.Offset(offset).Limit(q.Size).Find(dest).Error; err != nil {
			return response.Pagination{}, err
		}
	}

	pages := int((total + int64(q.Size) - 1) / int64(q.Size))
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   pages,
		Size:        q.Size,
		HasNextPage: q.Page < pages,
	}, nil
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
