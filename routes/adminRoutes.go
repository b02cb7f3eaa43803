package routes

import (
	"civicreport-be/controllers"
	"civicreport-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/v1/admin")
	{
		admin.POST("/signup", controllers.AdminSignup)
		admin.POST("/signin", controllers.AdminSignin)
	}

	guarded := r.Group("/api/v1/admin", middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		guarded.GET("/profile/:id", controllers.GetAdminProfile)
		guarded.PUT("/:id", controllers.UpdateAdminProfile)

		guarded.GET("/issues", controllers.GetIssues)
		guarded.GET("/analytics", controllers.GetIssueAnalytics)
		guarded.GET("/handled-issues", controllers.GetHandledIssues)
		guarded.GET("/escalated-issues", controllers.GetEscalatedIssues)
		guarded.GET("/escalated-issues/count", controllers.GetEscalatedIssuesCount)

		guarded.GET("/issue/:issueid/history", controllers.GetIssueHistory)
		guarded.PUT("/issue/:issueid/status", controllers.UpdateIssueStatus)
		guarded.POST("/issue/:issueid/assign", controllers.AssignIssue)
		guarded.POST("/issue/:issueid/escalate", controllers.EscalateIssue)
		guarded.DELETE("/issue/:issueid", controllers.DeleteIssueByAdmin)
	}
}
