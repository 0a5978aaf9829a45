package main

import (
	"context"
	"flag"
	"log"
	"os"

	"GoDrive/internal/uploader"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8000", "API base URL")
	token := flag.String("token", os.Getenv("GODRIVE_TOKEN"), "bearer token")
	parent := flag.Uint64("parent", 0, "target folder id")
	contentType := flag.String("content-type", "", "content type of the file")
	concurrency := flag.Int("concurrency", 4, "parts in flight")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: uploader [flags] <file>")
	}
	if *token == "" {
		log.Fatal("missing token: pass -token or set GODRIVE_TOKEN")
	}

	u := uploader.New(*baseURL, *token)
	u.Concurrency = *concurrency

	fileID, err := u.Upload(context.Background(), flag.Arg(0), *parent, *contentType)
	if err != nil {
		log.Fatalf("upload failed: %v", err)
	}
	log.Printf("uploaded as file %d", fileID)
}
