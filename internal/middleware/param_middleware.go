package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// IDKey — ключ контекста Gin, под которым сохраняется ID ресурса
const IDKey = "resourceID"

// ExtractID создает middleware для извлечения и валидации числового ID из параметра URL.
// Нечисловой или нулевой ID отклоняется с 422, как и любой некорректный ввод.
func ExtractID(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid " + paramName})
			return
		}
		c.Set(IDKey, uint(id))
		c.Next()
	}
}

// GetID возвращает ID, сохранённый ExtractID
func GetID(c *gin.Context) uint {
	return c.MustGet(IDKey).(uint)
}
