package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse es el sobre uniforme de todas las respuestas del API.
type JSONResponse struct {
	Success  bool        `json:"success"`
	Msg      string      `json:"msg,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Page     int         `json:"page,omitempty"`
	PageSize int         `json:"pageSize,omitempty"`
	Total    int64       `json:"total,omitempty"`
	Pages    int         `json:"pages,omitempty"`
}

func RespondJSON(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(code, JSONResponse{
		Success: code >= 200 && code < 300,
		Msg:     msg,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Success: false,
		Msg:     err.Error(),
	})
}

// RespondPage responde una lista paginada con los metadatos de paginación.
func RespondPage(c *gin.Context, code int, data interface{}, page, pageSize int, total int64) {
	c.JSON(code, JSONResponse{
		Success:  true,
		Data:     data,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Pages:    TotalPages(total, pageSize),
	})
}
