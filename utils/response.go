package utils

import "github.com/gin-gonic/gin"

// JSONSuccess writes {success:true, message?, ...payload}.
func JSONSuccess(c *gin.Context, code int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

// JSONError writes {success:false, message, error?}. detail is omitted when empty.
func JSONError(c *gin.Context, code int, message string, detail string) {
	body := gin.H{"success": false, "message": message}
	if detail != "" {
		body["error"] = detail
	}
	c.JSON(code, body)
}

// AbortJSONError is JSONError for middleware: the rest of the chain is skipped.
func AbortJSONError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": message})
}
