// Package validator 提供 gin 绑定使用的结构体校验器与多语言错误翻译
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator implements gin's binding.StructValidator
// CustomValidator 实现 gin 的 binding.StructValidator 接口
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyinit()
		return v.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")

		// Field names in messages follow the json tag
		// 错误消息中的字段名使用 json 标签
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.validate.RegisterValidation("notblank", validators.NotBlank)
	})
}

// NewTranslator registers en and zh translations on validate
// NewTranslator 为 validate 注册英文与中文翻译
func NewTranslator(validate *validator.Validate) (*ut.UniversalTranslator, error) {
	uni := ut.New(en.New(), en.New(), zh.New())

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}

	registerNotBlank := func(trans ut.Translator, text string) error {
		return validate.RegisterTranslation("notblank", trans, func(ut ut.Translator) error {
			return ut.Add("notblank", text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("notblank", fe.Field())
			return t
		})
	}
	if err := registerNotBlank(enTran, "{0} cannot be blank"); err != nil {
		return nil, err
	}
	if err := registerNotBlank(zhTran, "{0}不能为空"); err != nil {
		return nil, err
	}

	return uni, nil
}

// Errors flattens a validation error into translated messages
// Errors 将校验错误展开为翻译后的消息
func Errors(err error, trans ut.Translator) []string {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || trans == nil {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Translate(trans))
	}
	return out
}
