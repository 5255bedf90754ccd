package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"grand-hotel-backend/controllers"
	"grand-hotel-backend/middleware"
	"grand-hotel-backend/models"
)

// SetupRouter wires every controller onto a gin engine.
func SetupRouter(
	rc *controllers.RoomController,
	ac *controllers.AuthController,
	auth middleware.Authenticator,
	origins []string,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protect := middleware.Protect(auth)
	adminOnly := middleware.RestrictTo(models.RoleAdmin)

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", ac.Register)
			authRoutes.POST("/login", ac.Login)
			authRoutes.GET("/profile", protect, ac.Profile)
			authRoutes.PUT("/profile", protect, ac.UpdateProfile)
			authRoutes.PUT("/change-password", protect, ac.ChangePassword)
			authRoutes.GET("/verify", protect, ac.Verify)
		}

		rooms := api.Group("/rooms")
		{
			// public
			rooms.GET("", rc.GetRooms)
			rooms.GET("/export", protect, adminOnly, rc.ExportRooms)
			rooms.GET("/:id", rc.GetRoomByID)

			// admin
			rooms.POST("", protect, adminOnly,
				middleware.UploadImages("images", middleware.MaxImageFiles, false),
				rc.CreateRoom)
			rooms.PUT("/:id", protect, adminOnly, rc.UpdateRoom)
			rooms.DELETE("/:id", protect, adminOnly, rc.DeleteRoom)

			rooms.POST("/upload/image", protect, adminOnly,
				middleware.UploadImages("image", 1, true),
				rc.UploadImage)
			rooms.POST("/upload/images", protect, adminOnly,
				middleware.UploadImages("images", middleware.MaxImageFiles, true),
				rc.UploadImages)
			rooms.DELETE("/images/:filename", protect, adminOnly, rc.DeleteImage)
		}
	}

	return r
}
