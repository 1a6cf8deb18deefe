package handler

import (
	"github.com/Greninja7505/GreenForge/internal/fault"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FaultResponse 按错误分类映射HTTP状态码的错误响应
func FaultResponse(c *gin.Context, err error) {
	ErrorResponse(c, fault.HTTPStatus(err), err.Error())
}
