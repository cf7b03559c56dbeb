package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/config"
	"skill-map/internal/domain"
	"skill-map/internal/lightcast"
	"skill-map/internal/store"
)

type options struct {
	InputPath string        `long:"in" required:"true" description:"CSV or XLSX with skill_name and remote_skill_id columns"`
	Timeout   time.Duration `long:"timeout" default:"2h" description:"overall timeout"`
	Verbose   bool          `short:"v" long:"verbose" description:"log every lookup"`
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
	if opts.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	skills := store.NewSkillStore(cfg.SkillStoreCSV(), cfg.SkillStoreXLSX())
	n := lightcast.NewNormalizer(lightcast.New(cfg), skills, cfg.LightcastDelay)

	records, err := n.NormalizeFile(ctx, opts.InputPath)
	if err != nil {
		log.WithError(err).Fatal("normalization failed")
	}

	counts := countByStatus(records)
	log.WithFields(log.Fields{
		"csv":      cfg.SkillStoreCSV(),
		"xlsx":     cfg.SkillStoreXLSX(),
		"success":  counts[domain.StatusSuccess],
		"no_match": counts[domain.StatusNoMatch],
		"error":    counts[domain.StatusError],
	}).Infof("wrote %d skills", len(records))
}

func countByStatus(records []domain.SkillRecord) map[domain.Status]int {
	out := map[domain.Status]int{}
	for _, r := range records {
		out[r.Status]++
	}
	return out
}
