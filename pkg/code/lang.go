package code

import (
	"strings"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

const FALLBACK_LNG = "en"

// NormalizeLang maps request values such as "zh", "zh-CN" or "EN" onto a supported language
// NormalizeLang 将 "zh"、"zh-CN"、"EN" 等请求值映射为支持的语言
func NormalizeLang(language string) string {
	l := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(language), "-", "_"))
	switch {
	case l == "en" || strings.HasPrefix(l, "en_"):
		return "en"
	case l == "zh" || strings.HasPrefix(l, "zh_"):
		return "zh_cn"
	}
	return FALLBACK_LNG
}

// GetMessage returns the message for language, falling back to English
// GetMessage 根据传入的语言返回相应的消息，缺失时回退到英文
func (l lang) GetMessage(language string) string {
	if NormalizeLang(language) == "zh_cn" && l.zh_cn != "" {
		return l.zh_cn
	}
	return l.en
}

// GetSupportedLanguages returns all languages supported by the lang type
// GetSupportedLanguages 返回 lang 类型支持的所有语言
func GetSupportedLanguages() []string {
	return []string{"en", "zh_cn"}
}
