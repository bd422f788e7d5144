package router

import (
	"media-engine-backend/controller"
	"media-engine-backend/middleware"

	"github.com/gin-gonic/gin"
)

func Register() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", controller.Health)

	api := r.Group("/api")
	{
		public := api.Group("/user")
		{
			public.POST("/register", controller.UserRegister)
			public.POST("/login", controller.UserLogin)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/media/upload-link", controller.GetUploadLink)
			protected.POST("/media", controller.RegisterMedia)
			protected.GET("/media", controller.GetMediaList)
			protected.GET("/media/:id", controller.GetMedia)
			protected.DELETE("/media/:id", controller.DeleteMedia)
			protected.POST("/media/:id/reprocess", controller.ReprocessMedia)
			protected.PUT("/media/:id/favorite", controller.SetFavorite)
			protected.GET("/media/:id/download-link", controller.GetDownloadLink)

			protected.POST("/batch", controller.CreateBatch)
			protected.GET("/batch/:id", controller.GetBatch)

			protected.GET("/search", controller.SearchMedia)

			protected.GET("/faces", controller.GetFaceGroups)

			protected.GET("/events/media", controller.MediaEvents)
		}
	}

	return r
}
