package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"emojiart/internal/config"
	"emojiart/internal/decode"
	"emojiart/internal/domain"
	"emojiart/internal/fetch"
	"emojiart/internal/metrics"
	"emojiart/internal/repository/datastore"
	"emojiart/internal/repository/file"
	"emojiart/internal/repository/memory"
	"emojiart/internal/repository/redis"
	"emojiart/internal/usecase"
)

var logger = logging.Logger("emojiart")

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	envFile := flag.String("env", ".env", "Optional .env file with EMOJIART_* variables")
	debug := flag.Bool("debug", false, "Enable debug logging")
	background := flag.String("background", "", "Set the background to this image URL")
	clearBackground := flag.Bool("blank", false, "Clear the background")
	add := flag.String("add", "", "Add this emoji")
	x := flag.Int("x", 0, "X position for -add")
	y := flag.Int("y", 0, "Y position for -add")
	size := flag.Float64("size", 40, "Point size for -add")
	once := flag.Bool("once", false, "Apply the intents, save and exit instead of waiting for a signal")

	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	if err := logging.SetLogLevel("*", level); err != nil {
		log.Fatalf("Failed to set log level: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.Fetch.Timeout
	fetchOpts.MaxBytes = cfg.Fetch.MaxBytes
	fetchOpts.Breaker = cfg.Fetch.Breaker

	registry := prometheus.NewRegistry()

	document, err := usecase.NewEmojiArtDocument(ctx, usecase.Options{
		Store:         store,
		Fetcher:       fetch.New(fetchOpts),
		Decoder:       decode.New(),
		AutosaveDelay: cfg.AutosaveDelay,
		Metrics:       metrics.New(registry),
	})
	if err != nil {
		log.Fatalf("Failed to open document: %v", err)
	}

	document.Subscribe(func(s domain.Snapshot) {
		logger.Infow("document changed",
			"revision", s.Revision,
			"emojis", len(s.Document.Emojis()),
			"background", s.Document.Background().String(),
			"status", s.FetchStatus.String(),
			"image", s.BackgroundImage != nil,
		)
	})

	switch {
	case *clearBackground:
		document.SetBackground(domain.Blank())
	case *background != "":
		document.SetBackground(domain.URLBackground(*background))
	}
	if *add != "" {
		emoji := document.AddEmoji(*add, domain.Location{X: *x, Y: *y}, *size)
		logger.Infof("Added %s with id %d", emoji.Text, emoji.ID)
	}

	if !*once {
		logger.Info("Editing session running, press Ctrl+C to save and quit")
		<-ctx.Done()
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := document.Save(saveCtx); err != nil {
		logger.Errorf("Failed to save document: %v", err)
	}
	document.Close()

	logMetrics(registry)
}

func newStore(ctx context.Context, cfg config.StoreConfig) (domain.DocumentStore, error) {
	switch cfg.Kind {
	case config.StoreFile:
		store, err := file.NewDocumentStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		logger.Infof("Autosaving to %s", store.Path())
		return store, nil

	case config.StoreMemory:
		return memory.NewDocumentStore(), nil

	case config.StoreRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rd, err := redis.Dial(dialCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.DefaultOptions())
		if err != nil {
			return nil, err
		}
		store, err := datastore.NewDocumentStore(rd, cfg.Key)
		if err != nil {
			rd.Close()
			return nil, err
		}
		logger.Infof("Autosaving to redis %s key %s", cfg.RedisAddr, store.Key())
		return store, nil

	default:
		return nil, errors.Errorf("unsupported store kind: %s", cfg.Kind)
	}
}

// logMetrics prints the session counters on exit
func logMetrics(gatherer prometheus.Gatherer) {
	families, err := gatherer.Gather()
	if err != nil {
		logger.Warnf("Failed to gather metrics: %v", err)
		return
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			fields := []interface{}{"metric", family.GetName(), "value", m.GetCounter().GetValue()}
			for _, label := range m.GetLabel() {
				fields = append(fields, label.GetName(), label.GetValue())
			}
			logger.Infow("session counter", fields...)
		}
	}
}
