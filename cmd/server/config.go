package main

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"wordmask/pkg/censor"
	"wordmask/pkg/dict"
	"wordmask/pkg/storage"
	"wordmask/pkg/storage/memdb"
	"wordmask/pkg/storage/mongo"
	"wordmask/pkg/storage/postgres"
)

type Config struct {
	ServiceName string `toml:"serviceName"`
	HTTPAddr    string `toml:"httpAddr"`
	LogLevel    string `toml:"logLevel"`

	DictSource     string `toml:"dictSource"`
	DictPath       string `toml:"dictPath"`
	DictURL        string `toml:"dictURL"`
	ReloadInterval string `toml:"reloadInterval"`
	Placeholder    string `toml:"placeholder"`
	Noise          string `toml:"noise"`

	KafkaAddr    string `toml:"kafkaAddr"`
	KafkaTopic   string `toml:"kafkaTopic"`
	KafkaBatch   int    `toml:"kafkaBatch"`
	ReloadTopic  string `toml:"reloadTopic"`
	KafkaGroupID string `toml:"kafkaGroupID"`

	ElasticNodes []string `toml:"elasticNodes"`
	ElasticIndex string   `toml:"elasticIndex"`
	AuditWorkers int      `toml:"auditWorkers"`
}

// censorOptions turns the placeholder and noise settings into censor options.
// Empty values keep the defaults.
func (cfg *Config) censorOptions() ([]censor.Option, error) {
	var opts []censor.Option

	if cfg.Placeholder != "" {
		if utf8.RuneCountInString(cfg.Placeholder) != 1 {
			return nil, fmt.Errorf("placeholder must be a single character, got %q", cfg.Placeholder)
		}
		r, _ := utf8.DecodeRuneInString(cfg.Placeholder)
		opts = append(opts, censor.WithPlaceholder(r))
	}
	if cfg.Noise != "" {
		opts = append(opts, censor.WithNoise(censor.NewNoiseSet([]rune(cfg.Noise)...)))
	}

	return opts, nil
}

func (cfg *Config) reloadInterval() (time.Duration, error) {
	if cfg.ReloadInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.ReloadInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid reload interval %q: %w", cfg.ReloadInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid reload interval %q: negative", cfg.ReloadInterval)
	}
	return d, nil
}

// backend is the dictionary source plus, for editable sources, the storage
// behind the /dictionary/words endpoints.
type backend struct {
	name  string
	src   dict.Source
	db    storage.Storage
	close func()
}

func openBackend(ctx context.Context, cfg *Config) (*backend, error) {
	switch strings.ToLower(cfg.DictSource) {
	case "", "file":
		src := dict.FileSource{Path: cfg.DictPath}
		return &backend{name: src.String(), src: src, close: func() {}}, nil

	case "json":
		src := dict.JSONSource{Path: cfg.DictPath}
		return &backend{name: src.String(), src: src, close: func() {}}, nil

	case "http":
		if cfg.DictURL == "" {
			return nil, fmt.Errorf("dictSource http requires dictURL")
		}
		src := dict.HTTPSource{URL: cfg.DictURL}
		return &backend{name: src.String(), src: src, close: func() {}}, nil

	case "memory":
		db := memdb.New()
		if cfg.DictPath != "" {
			words, err := dict.FileSource{Path: cfg.DictPath}.Words(ctx)
			if err != nil {
				log.Warnf("[server] failed to seed in-memory dictionary from %s: %v", cfg.DictPath, err)
			} else if len(words) > 0 {
				if err := db.AddWords(ctx, words...); err != nil {
					log.Warnf("[server] failed to seed in-memory dictionary: %v", err)
				}
			}
		}
		return &backend{name: db.String(), src: db, db: db, close: func() {}}, nil

	case "postgres":
		pgConf := postgres.ConfigFromEnv()
		if !pgConf.IsValid() {
			return nil, fmt.Errorf("postgres is not configured: %s", pgConf)
		}
		db, err := postgres.New(ctx, pgConf.ConString())
		if err != nil {
			return nil, err
		}
		if err := db.Init(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Infof("[server] connected to postgres %s", pgConf)
		return &backend{name: db.String(), src: db, db: db, close: db.Close}, nil

	case "mongo":
		mConf, err := mongo.NewConfig()
		if err != nil {
			return nil, err
		}
		db, err := mongo.New(ctx, mConf)
		if err != nil {
			return nil, err
		}
		log.Infof("[server] connected to mongo %s", mConf)
		return &backend{name: db.String(), src: db, db: db, close: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			db.Close(closeCtx)
		}}, nil
	}

	return nil, fmt.Errorf("unknown dictionary source %q", cfg.DictSource)
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}
}
