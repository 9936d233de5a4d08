package routers

import (
	"github.com/haierkeys/fast-note-service/pkg/validator"

	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
)

// SetupValidator installs the custom validator into gin binding and returns its translators
// SetupValidator 将自定义校验器注册到 gin binding，并返回其翻译器
func SetupValidator() (*ut.UniversalTranslator, error) {
	v := validator.NewCustomValidator()
	binding.Validator = v
	return validator.NewTranslator(v.Engine().(*validatorV10.Validate))
}
