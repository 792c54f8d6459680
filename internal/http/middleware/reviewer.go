package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ReviewerKeyHeader = "X-Reviewer-Key"
	ReviewerIDHeader  = "X-Reviewer-Id"
)

// ReviewerKey guards the triage surface. Real identity and role checks live
// in the platform's auth service; this shared key is the service boundary,
// with X-Reviewer-Id carrying the acting reviewer's user id.
func ReviewerKey(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if required == "" {
			c.Next()
			return
		}
		if c.GetHeader(ReviewerKeyHeader) != required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid reviewer key",
				},
			})
			return
		}
		c.Next()
	}
}

// ReviewerID returns the acting reviewer's id from the request headers.
func ReviewerID(c *gin.Context) string {
	return c.GetHeader(ReviewerIDHeader)
}
