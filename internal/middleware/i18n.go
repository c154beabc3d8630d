// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/i18n"
)

// I18nMiddleware resolves the response language. An explicit ?lang= query
// parameter wins over the Accept-Language header; anything unsupported
// falls back to English.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := normalizeLang(c.Query("lang"))
		if lang == "" {
			lang = normalizeLang(firstAcceptedLanguage(c.GetHeader("Accept-Language")))
		}
		if lang == "" {
			lang = "en"
		}

		c.Set("lang", lang)
		c.Next()
	}
}

// firstAcceptedLanguage picks the leading tag out of a header like
// "zh-TW,zh;q=0.9,en;q=0.8". Quality values are ignored; clients list
// their preferred language first in practice.
func firstAcceptedLanguage(header string) string {
	if header == "" {
		return ""
	}
	first := strings.SplitN(header, ",", 2)[0]
	return strings.TrimSpace(strings.SplitN(first, ";", 2)[0])
}

func normalizeLang(tag string) string {
	switch tag {
	case "":
		return ""
	case "zh-TW", "zh-Hant", "zh_TW", "zh":
		tag = "zh_TW"
	default:
		base := strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0]
		tag = strings.ToLower(base)
	}

	for _, supported := range i18n.GetSupportedLanguages() {
		if tag == supported {
			return tag
		}
	}
	return ""
}
