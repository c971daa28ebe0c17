package utils

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func SuccessWithMessage(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{"success": true, "message": message, "data": data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

func ErrorWithDetails(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message, "details": details},
	})
}

// Paginated wraps a page of results with its paging metadata.
func Paginated(c *gin.Context, code int, data interface{}, page, perPage int, total int64) {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage == 0 {
		lastPage = 1
	}
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
		"meta": gin.H{
			"page":      page,
			"per_page":  perPage,
			"total":     total,
			"last_page": lastPage,
		},
	})
}
