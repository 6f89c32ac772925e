package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/api"
	"github.com/trustlevel/trustvote/directory"
	"github.com/trustlevel/trustvote/election"
	"github.com/trustlevel/trustvote/group"
	"github.com/trustlevel/trustvote/ledger"
	"github.com/trustlevel/trustvote/notify"
	"github.com/trustlevel/trustvote/storage"
)

// Config is read from the environment at startup.
type Config struct {
	Host            string `env:"TRUSTVOTE_HOST" env-default:"0.0.0.0"`
	Port            int    `env:"TRUSTVOTE_PORT" env-default:"8080"`
	DataDir         string `env:"TRUSTVOTE_DATADIR" env-default:""`
	LogLevel        string `env:"TRUSTVOTE_LOGLEVEL" env-default:"info"`
	FrontendURL     string `env:"TRUSTVOTE_FRONTEND_URL" env-default:"http://localhost:3000"`
	EnforceCapacity bool   `env:"TRUSTVOTE_ENFORCE_CAPACITY" env-default:"false"`

	SmtpHost     string `env:"TRUSTVOTE_SMTP_HOST" env-default:""`
	SmtpPort     int    `env:"TRUSTVOTE_SMTP_PORT" env-default:"587"`
	SmtpUser     string `env:"TRUSTVOTE_SMTP_USER" env-default:""`
	SmtpPassword string `env:"TRUSTVOTE_SMTP_PASSWORD" env-default:""`
	SmtpFrom     string `env:"TRUSTVOTE_SMTP_FROM" env-default:""`
}

func main() {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "could not parse configuration from environment: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel, "stdout", nil)

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("could not resolve user home dir: %v", err)
		}
		cfg.DataDir = filepath.Join(home, ".trustvote")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		log.Fatalf("could not create data dir %s: %v", cfg.DataDir, err)
	}

	database, err := metadb.New(db.TypePebble, cfg.DataDir)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}

	stg := storage.New(database)
	defer stg.Close()
	groups := group.NewDB(stg.Database(), group.Config{EnforceCapacity: cfg.EnforceCapacity})
	dir := directory.New(stg)
	ldg := ledger.New(stg, dir, nil)

	var notifier notify.Notifier = &notify.LogNotifier{FrontendURL: cfg.FrontendURL}
	if cfg.SmtpHost != "" && cfg.SmtpUser != "" && cfg.SmtpPassword != "" {
		notifier = notify.NewSMTP(notify.SMTPConfig{
			Host:        cfg.SmtpHost,
			Port:        cfg.SmtpPort,
			Username:    cfg.SmtpUser,
			Password:    cfg.SmtpPassword,
			From:        cfg.SmtpFrom,
			FrontendURL: cfg.FrontendURL,
		})
		log.Infow("smtp delivery enabled", "host", cfg.SmtpHost, "from", cfg.SmtpFrom)
	}

	elections := election.New(stg, groups, ldg, dir, notifier, nil)

	if _, err := api.New(&api.APIConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Election: elections,
	}); err != nil {
		log.Fatalf("could not start API: %v", err)
	}
	log.Infow("service started", "datadir", cfg.DataDir, "enforceCapacity", cfg.EnforceCapacity)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
}
