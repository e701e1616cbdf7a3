package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
)

// extractToken busca el token de sesión: primero la cookie auth_token,
// después el header Authorization: Bearer.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// AuthMiddleware valida la sesión y deja user_id y role en el contexto.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("no autenticado"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token inválido o expirado"))
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token sin identidad de usuario"))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", strings.ToLower(claims.Role))

		c.Next()
	}
}
