package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/maatchaa/maatchaa-backend/internal/clients/openai"
	"github.com/maatchaa/maatchaa-backend/internal/data/db"
	"github.com/maatchaa/maatchaa-backend/internal/data/repos"
	"github.com/maatchaa/maatchaa-backend/internal/discovery"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

func main() {
	var all, simple bool
	var pace time.Duration
	flag.BoolVar(&all, "all", false, "regenerate keywords for every product, not only those without any")
	flag.BoolVar(&simple, "simple", false, "skip the model and derive keywords from titles")
	flag.DurationVar(&pace, "pace", 2*time.Second, "delay between model calls")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("load .env: %v\n", err)
	}

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("init postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	var model discovery.KeywordModel
	if !simple {
		client, err := openai.NewClient(log)
		if err != nil {
			log.Error("init openai client; rerun with -simple to skip the model", "error", err)
			os.Exit(1)
		}
		model = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gen := discovery.NewKeywordGenerator(log, model)
	res, err := discovery.BackfillKeywords(ctx, log, repos.NewProductRepo(pg.DB(), log), gen, discovery.BackfillOptions{
		All:    all,
		Simple: simple,
		Pace:   pace,
	})
	if err != nil {
		log.Error("keyword backfill failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("products=%d updated=%d empty=%d failed=%d\n", res.Total, res.Updated, res.Empty, res.Failed)
}
