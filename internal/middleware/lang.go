package middleware

import (
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator picks the response language from the lang query or header
// LangWithTranslator 根据 lang 查询参数或请求头选择响应语言
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, exist := c.GetQuery("lang")
		if !exist {
			lang = c.GetHeader("lang")
		}
		lang = code.NormalizeLang(lang)
		c.Set(app.LangKey, lang)

		locale := "en"
		if lang == "zh_cn" {
			locale = "zh"
		}
		if uni != nil {
			if trans, found := uni.GetTranslator(locale); found {
				c.Set(app.TransKey, trans)
			}
		}

		c.Next()
	}
}
