package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"wordmask/pkg/api"
	"wordmask/pkg/audit"
	"wordmask/pkg/censor"
	"wordmask/pkg/dict"
)

func main() {
	var (
		configPath  string
		dictSource  string
		dictPath    string
		dictURL     string
		httpAddr    string
		logLevel    string
		kafkaAddr   string
		kafkaTopic  string
		kafkaBatch  int
		reloadTopic string
	)

	flag.StringVar(&configPath, "servconf", "cmd/server/config.toml", "Path to TOML config file")
	flag.StringVar(&dictSource, "source", "", "Dictionary source: file, json, http, memory, postgres, mongo.")
	flag.StringVar(&dictPath, "dict", "", "Path to the dictionary file.")
	flag.StringVar(&dictURL, "dicturl", "", "URL of the dictionary for the http source.")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.StringVar(&kafkaAddr, "kafka", "", "Kafka server address in the form 'host:port'.")
	flag.StringVar(&kafkaTopic, "topic", "", "Kafka topic for request logs.")
	flag.IntVar(&kafkaBatch, "batch", 0, "Kafka batch size.")
	flag.StringVar(&reloadTopic, "reloadtopic", "", "Kafka topic with dictionary change notifications.")
	flag.Parse()

	cfg := Config{
		HTTPAddr:     ":8055",
		LogLevel:     "info",
		AuditWorkers: 2,
	}
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if dictSource != "" {
		cfg.DictSource = dictSource
	}
	if dictPath != "" {
		cfg.DictPath = dictPath
	}
	if dictURL != "" {
		cfg.DictURL = dictURL
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if kafkaAddr != "" {
		cfg.KafkaAddr = kafkaAddr
	}
	if kafkaTopic != "" {
		cfg.KafkaTopic = kafkaTopic
	}
	if kafkaBatch != 0 {
		cfg.KafkaBatch = kafkaBatch
	}
	if reloadTopic != "" {
		cfg.ReloadTopic = reloadTopic
	}

	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
	}
	setLogLevel(cfg.LogLevel)

	opts, err := cfg.censorOptions()
	if err != nil {
		log.Fatalf("[server] %v", err)
	}
	interval, err := cfg.reloadInterval()
	if err != nil {
		log.Fatalf("[server] %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	be, err := openBackend(ctx, &cfg)
	if err != nil {
		log.Fatalf("[server] failed to open dictionary source: %v", err)
	}
	defer be.close()

	c := censor.New(opts...)
	rl := dict.NewReloader(be.src, c)
	if n, err := rl.Reload(ctx); err != nil {
		log.Errorf("[server] initial dictionary load from %s failed, starting with an empty dictionary: %v", be.name, err)
	} else {
		log.Infof("[server] loaded %d phrases from %s", n, be.name)
	}

	if interval > 0 {
		go rl.Run(ctx, interval)
	}

	if cfg.KafkaAddr != "" && cfg.ReloadTopic != "" {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{cfg.KafkaAddr},
			Topic:   cfg.ReloadTopic,
			GroupID: cfg.KafkaGroupID,
		})
		defer r.Close()
		go rl.Watch(ctx, r)
	}

	var kafkaWriter *kafka.Writer
	if cfg.KafkaAddr != "" && cfg.KafkaTopic != "" {
		kafkaWriter = &kafka.Writer{
			Addr:      kafka.TCP(cfg.KafkaAddr),
			Topic:     cfg.KafkaTopic,
			BatchSize: cfg.KafkaBatch,
		}
		defer kafkaWriter.Close()
		err := createTopic(kafkaWriter.Addr.String(), kafkaWriter.Topic)
		if err != nil {
			log.Warnf("[server] failed to create Kafka topic: %v", err)
		}
	} else {
		log.Warnf("[server] kafka was not configured, logs will not be sent to Kafka")
	}

	apiOpts := []api.Option{api.WithReloader(rl)}
	if be.db != nil {
		apiOpts = append(apiOpts, api.WithStorage(be.db))
	}

	var aud *audit.Auditor
	if len(cfg.ElasticNodes) > 0 && cfg.ElasticIndex != "" {
		idx, err := audit.NewElasticIndexer(cfg.ElasticNodes, cfg.ElasticIndex)
		if err != nil {
			log.Fatalf("[server] failed to create Elasticsearch client: %v", err)
		}
		aud = audit.New(idx, cfg.AuditWorkers)
		apiOpts = append(apiOpts, api.WithAuditor(aud))
	} else {
		log.Warnf("[server] elasticsearch was not configured, matches will not be audited")
	}

	api, err := api.New(cfg.ServiceName, c, kafkaWriter, apiOpts...)
	if err != nil {
		log.Fatalf("[server] failed to create API: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("[server] starting on port %v", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
			return
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	cancel()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	if aud != nil {
		aud.Close()
	}
}

func createTopic(broker, topic string) error {
	conn, err := kafka.DialContext(context.Background(), "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
