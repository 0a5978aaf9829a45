package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GoDrive/config"
	"GoDrive/internal/repo"
	"GoDrive/internal/service"
	"GoDrive/internal/storage"
	"GoDrive/internal/worker"
)

func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	store := storage.InitMinio()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := service.NewCatalog(repo.Db)
	locks := func(key string, ttl time.Duration) service.Locker {
		return repo.NewRedisLock(repo.Redis, key, ttl)
	}
	uploads := service.NewUploadService(
		catalog,
		store,
		config.AppConfig.BucketName,
		locks,
		nil,
		nil,
	)
	go worker.RunSweeper(ctx, uploads)

	log.Println("upload event worker started")
	if err := worker.RunEventWorker(ctx); err != nil {
		log.Fatalf("upload event worker stopped: %v", err)
	}
}
