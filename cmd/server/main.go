package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"skill-map/internal/api"
	"skill-map/internal/api/handlers"
	"skill-map/internal/config"
	"skill-map/internal/coursera"
	"skill-map/internal/lightcast"
	"skill-map/internal/mapping"
	"skill-map/internal/sftpclient"
	"skill-map/internal/store"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	skills := store.NewSkillStore(cfg.SkillStoreCSV(), cfg.SkillStoreXLSX())
	mappings := mapping.NewStore(cfg.MappingXLSX())

	normalizer := lightcast.NewNormalizer(lightcast.New(cfg), skills, cfg.LightcastDelay)
	builder := mapping.NewBuilder(skills, coursera.New(cfg), mappings, cfg.CourseraDelay)
	publisher := sftpclient.Publisher{Config: sftpclient.FromConfig(cfg)}

	app := api.New(cfg.AllowedOrigins, log.StandardLogger())
	api.Register(app,
		handlers.NewHealthHandler(),
		handlers.NewProcessHandler(normalizer, cfg.UploadDir, cfg.SkillStoreXLSX()),
		handlers.NewSkillsHandler(skills, cfg.SkillStoreXLSX(), cfg.UploadDir),
		handlers.NewCourseraHandler(builder, mappings, publisher, cfg.MappingXLSX(), cfg.UploadDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(log.Fields{
		"addr":     cfg.Addr(),
		"data_dir": cfg.DataDir,
		"origins":  cfg.AllowedOrigins,
	}).Info("HTTP server listening")
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
