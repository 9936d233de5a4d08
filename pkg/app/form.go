package app

import (
	"github.com/haierkeys/fast-note-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
)

// TransKey gin context key holding the validator translator
// TransKey gin 上下文中保存校验翻译器的键
const TransKey = "trans"

// BindAndValid binds the request into v (query for GET/DELETE, body otherwise)
// and returns translated validation messages on failure
// BindAndValid 绑定请求参数到 v（GET/DELETE 使用 query，其余使用 body），失败时返回翻译后的校验信息
func BindAndValid(c *gin.Context, v interface{}) (bool, []string) {
	var err error
	switch c.Request.Method {
	case "GET", "DELETE":
		err = c.ShouldBindQuery(v)
	default:
		err = c.ShouldBindWith(v, binding.Default(c.Request.Method, c.ContentType()))
	}
	if err == nil {
		return true, nil
	}

	var trans ut.Translator
	if t, ok := c.Get(TransKey); ok {
		trans, _ = t.(ut.Translator)
	}
	return false, validator.Errors(err, trans)
}
