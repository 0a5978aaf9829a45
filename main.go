package main

import (
	"time"

	"GoDrive/config"
	"GoDrive/internal/handler"
	"GoDrive/internal/mq"
	"GoDrive/internal/repo"
	"GoDrive/internal/service"
	"GoDrive/internal/storage"
	"GoDrive/router"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	store := storage.InitMinio()

	catalog := service.NewCatalog(repo.Db)
	locks := func(key string, ttl time.Duration) service.Locker {
		return repo.NewRedisLock(repo.Redis, key, ttl)
	}
	uploads := service.NewUploadService(
		catalog,
		store,
		config.AppConfig.BucketName,
		locks,
		mq.EventPublisher{},
		service.NewSessionCache(repo.Redis),
	)
	files := service.NewFileService(repo.Db, store, config.AppConfig.BucketName)

	r := router.InitRouter(
		handler.NewUploadHandler(uploads),
		handler.NewFileHandler(files),
	)

	r.Run(":8000")
}
