// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// VersionDTO version information for API response
// VersionDTO 版本信息 API 响应对象
type VersionDTO struct {
	Name      string `json:"name"`      // Application name // 应用名称
	Version   string `json:"version"`   // Current version // 当前版本
	GitTag    string `json:"gitTag"`    // Git tag // Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}

// HealthDTO liveness response
// HealthDTO 健康检查响应
type HealthDTO struct {
	Status        string `json:"status"`        // always "ok" // 固定为 ok
	Version       string `json:"version"`       // Current version // 当前版本
	Database      string `json:"database"`      // ok | unavailable
	Authenticated bool   `json:"authenticated"` // Request carried a valid token // 请求是否携带有效凭证
}

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}
