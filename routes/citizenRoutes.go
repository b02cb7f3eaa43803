package routes

import (
	"civicreport-be/controllers"
	"civicreport-be/middlewares"

	"github.com/gin-gonic/gin"
)

// CitizenRoutes sets up citizen account routes
func CitizenRoutes(r *gin.Engine) {
	citizen := r.Group("/api/v1/citizen")
	{
		citizen.POST("/register", controllers.RegisterCitizen)
		citizen.POST("/login", controllers.LoginCitizen)
		citizen.GET("/me", middlewares.AuthMiddleware(), controllers.GetMe)
		citizen.POST("/logout", controllers.Logout)
	}
}
