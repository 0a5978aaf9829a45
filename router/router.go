package router

import (
	"GoDrive/internal/handler"
	"GoDrive/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter(uploads *handler.UploadHandler, files *handler.FileHandler) *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/register", handler.Register)
		api.POST("/login", handler.Login)

		auth := api.Group("")
		auth.Use(utils.AuthMiddleware())

		file := auth.Group("/file")
		{
			file.POST("/list", files.List)
			file.POST("/folder", files.CreateFolder)
			file.POST("/download/url", files.DownloadURL)
			file.POST("/download", files.Download)
			file.POST("/upload/multipart/init", uploads.Init)
			file.POST("/upload/multipart/url", uploads.PartURL)
			file.POST("/upload/multipart/complete", uploads.Complete)
			file.POST("/upload/multipart/abort", uploads.Abort)
		}
	}
	return r
}
