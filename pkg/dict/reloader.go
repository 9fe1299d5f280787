package dict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"wordmask/pkg/censor"
)

// MessageReader is the part of kafka.Reader used to receive reload notifications.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Reloader loads phrases from a Source into a Censor. A failed reload keeps the
// previously active dictionary.
type Reloader struct {
	src Source
	c   *censor.Censor

	mu       sync.Mutex
	loadedAt time.Time
}

func NewReloader(src Source, c *censor.Censor) *Reloader {
	return &Reloader{src: src, c: c}
}

// Reload reads the source and publishes a new dictionary. It returns the number
// of distinct phrases now active.
func (r *Reloader) Reload(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	words, err := r.src.Words(ctx)
	if err != nil {
		return r.c.Dictionary().Len(), fmt.Errorf("failed to read dictionary from %v: %w", r.src, err)
	}

	r.c.Load(words)
	r.loadedAt = time.Now()

	return r.c.Dictionary().Len(), nil
}

// LoadedAt returns the time of the last successful reload.
func (r *Reloader) LoadedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadedAt
}

// Run reloads the dictionary every interval until ctx is done.
func (r *Reloader) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("[reloader] stopped")
			return
		case <-ticker.C:
			r.reloadAndLog(ctx, "ticker")
		}
	}
}

// Watch reloads the dictionary on every message read from mr until ctx is done.
// The message content is ignored: a message only signals that the source changed.
func (r *Reloader) Watch(ctx context.Context, mr MessageReader) {
	log.Info("[reloader] watching for reload notifications...")
	for {
		msg, err := mr.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				log.Info("[reloader] watcher stopped")
				return
			}
			log.Errorf("[reloader] failed to read message from Kafka: %v", err)
			continue
		}
		log.Debugf("[reloader] received reload notification: %s", string(msg.Value))

		r.reloadAndLog(ctx, "notification")
	}
}

func (r *Reloader) reloadAndLog(ctx context.Context, trigger string) {
	n, err := r.Reload(ctx)
	if err != nil {
		log.Errorf("[reloader][%s] %v, keeping %d phrases", trigger, err, n)
		return
	}
	log.Infof("[reloader][%s] dictionary reloaded: %d phrases", trigger, n)
}
