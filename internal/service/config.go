// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // User related config // 用户相关配置
	App  AppServiceConfig  // App related config // 应用相关配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // Whether registration is enabled // 注册是否启用
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	DefaultFolderName string // Name of the lazily created default folder // 自动创建的默认文件夹名称
}

func (c *ServiceConfig) defaultFolderName() string {
	if c == nil || c.App.DefaultFolderName == "" {
		return "Default"
	}
	return c.App.DefaultFolderName
}
