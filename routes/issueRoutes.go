package routes

import (
	"civicreport-be/controllers"
	"civicreport-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/v1/issue")
	{
		issue.POST("/create", middlewares.OptionalAuth(), middlewares.IssueRateLimiter(10), controllers.CreateIssue)
		issue.GET("/recent", controllers.RecentIssues)
		issue.GET("/:id", middlewares.AuthMiddleware(), controllers.GetIssue)
	}
}
