package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/config"
	"skill-map/internal/coursera"
	"skill-map/internal/mapping"
	"skill-map/internal/sftpclient"
	"skill-map/internal/store"
)

type options struct {
	MaxCourses int           `long:"max-courses" description:"courses kept per skill (default COURSERA_MAX_COURSES)"`
	Timeout    time.Duration `long:"timeout" default:"4h" description:"overall timeout"`
	SFTP       bool          `long:"sftp" description:"upload the mapping spreadsheet via SFTP"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg := config.Load()
	config.SetupLogging(cfg)
	cfg = applyOptions(cfg, opts)

	rootCtx, rootCancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer rootCancel()
	rootCtx, stop := signal.NotifyContext(rootCtx, os.Interrupt)
	defer stop()

	skills := store.NewSkillStore(cfg.SkillStoreCSV(), cfg.SkillStoreXLSX())
	mappings := mapping.NewStore(cfg.MappingXLSX())
	builder := mapping.NewBuilder(skills, coursera.New(cfg), mappings, cfg.CourseraDelay)

	rows, err := builder.Build(rootCtx)
	if err != nil {
		log.WithError(err).Fatal("coursera mapping failed")
	}
	log.Infof("wrote %d mapping rows to %s", len(rows), mappings.Path)

	if opts.SFTP {
		upCfg := sftpclient.FromConfig(cfg)

		upCtx, upCancel := context.WithTimeout(rootCtx, 5*time.Minute)
		defer upCancel()

		remote, err := sftpclient.UploadFile(upCtx, upCfg, mappings.Path, filepath.Base(mappings.Path))
		if err != nil {
			log.WithError(err).Fatal("sftp upload failed")
		}
		log.Infof("uploaded to sftp://%s:%d%s", upCfg.Host, upCfg.Port, remote)
	}
}

func applyOptions(cfg config.Config, opts options) config.Config {
	if opts.MaxCourses > 0 {
		cfg.CourseraMaxCourses = opts.MaxCourses
	}
	return cfg
}
