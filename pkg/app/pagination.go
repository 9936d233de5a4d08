package app

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationConfig pagination configuration // 分页配置
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPaginationConfig default pagination configuration // 默认分页配置
var DefaultPaginationConfig = PaginationConfig{
	DefaultPageSize: 10,
	MaxPageSize:     100,
}

// paginationConfigKey gin context key for an injected PaginationConfig
const paginationConfigKey = "pagination_config"

// SetPaginationConfig stores cfg on the request so later page size lookups honour it
// SetPaginationConfig 将分页配置写入请求上下文
func SetPaginationConfig(c *gin.Context, cfg PaginationConfig) {
	c.Set(paginationConfigKey, cfg)
}

func paginationConfig(c *gin.Context) PaginationConfig {
	if v, ok := c.Get(paginationConfigKey); ok {
		if cfg, ok := v.(PaginationConfig); ok {
			return cfg
		}
	}
	return DefaultPaginationConfig
}

func queryInt(c *gin.Context, key string) int {
	s, exist := c.GetQuery(key)
	if !exist {
		s = c.PostForm(key)
	}
	v, _ := strconv.Atoi(s)
	return v
}

func GetPage(c *gin.Context) int {
	page := queryInt(c, "page")
	if page <= 0 {
		return 1
	}
	return page
}

// GetPageSize gets page size using the injected or default configuration
// GetPageSize 获取分页大小（使用注入或默认的配置）
func GetPageSize(c *gin.Context) int {
	return NormalizePageSize(queryInt(c, "pageSize"), paginationConfig(c))
}

// NormalizePageSize clamps pageSize into [1, cfg.MaxPageSize]
// NormalizePageSize 将分页大小限制在 [1, cfg.MaxPageSize]
func NormalizePageSize(pageSize int, cfg PaginationConfig) int {
	if pageSize <= 0 {
		return cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		return cfg.MaxPageSize
	}
	return pageSize
}

func GetPageOffset(page, pageSize int) int {
	result := 0
	if page > 0 {
		result = (page - 1) * pageSize
	}

	return result
}

func NewPager(c *gin.Context, totalRows int) *Pager {
	return &Pager{
		Page:      GetPage(c),
		PageSize:  GetPageSize(c),
		TotalRows: totalRows,
	}
}
