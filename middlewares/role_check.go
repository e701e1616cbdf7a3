package middlewares

import (
	"errors"
	"net/http"

	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
)

// RequireRoles permite el paso solo a los roles listados. Debe montarse
// después de AuthMiddleware.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("no autenticado"))
			c.Abort()
			return
		}

		role, ok := roleValue.(string)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("rol inválido en sesión"))
			c.Abort()
			return
		}

		if _, ok := allowedSet[role]; !ok {
			utils.RespondError(c, http.StatusForbidden, errors.New("no tiene permisos para esta operación"))
			c.Abort()
			return
		}

		c.Next()
	}
}
