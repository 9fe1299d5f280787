// Package audit records detected banned phrases for later review.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

const indexTimeout = 10 * time.Second

type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Service   string    `json:"service"`
	Action    string    `json:"action"`
	Matches   []string  `json:"matches"`
	Masked    string    `json:"masked"`
}

// Indexer persists a single event.
type Indexer interface {
	Index(ctx context.Context, e Event) error
}

// ElasticIndexer stores events as documents of an Elasticsearch index.
type ElasticIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewElasticIndexer(nodes []string, index string) (*ElasticIndexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: nodes})
	if err != nil {
		return nil, err
	}

	return &ElasticIndexer{es: es, index: index}, nil
}

func (ei *ElasticIndexer) Index(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	res, err := ei.es.Index(
		ei.index,
		bytes.NewReader(body),
		ei.es.Index.WithDocumentID(e.ID.String()),
		ei.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index document %s: %s", e.ID, res.Status())
	}

	return nil
}

// Auditor hands events to a fixed number of workers. Submit never blocks the caller.
type Auditor struct {
	idx  Indexer
	jobs chan Event
	wg   sync.WaitGroup
	once sync.Once
}

func New(idx Indexer, numWorkers int) *Auditor {
	if numWorkers < 1 {
		numWorkers = 1
	}

	a := Auditor{
		idx:  idx,
		jobs: make(chan Event, numWorkers*5), // buffer is needed to increase throughput
	}

	a.wg.Add(numWorkers)
	for workerID := 0; workerID < numWorkers; workerID++ {
		go func(id int) {
			defer a.wg.Done()
			a.worker(id)
		}(workerID)
	}

	return &a
}

// Submit queues e. It returns false when the queue is full and the event was dropped.
// ID and Timestamp are filled in when zero.
func (a *Auditor) Submit(e Event) bool {
	if e.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			log.Errorf("[audit] failed to generate event ID: %v", err)
			return false
		}
		e.ID = id
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	select {
	case a.jobs <- e:
		return true
	default:
		log.Warnf("[audit][%s] queue is full, event dropped", shorten(e.RequestID))
		return false
	}
}

// Close stops accepting events and waits until the queued ones are indexed.
// Submit must not be called after Close.
func (a *Auditor) Close() {
	a.once.Do(func() {
		close(a.jobs)
	})
	a.wg.Wait()
}

func (a *Auditor) worker(workerID int) {
	for e := range a.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		err := a.idx.Index(ctx, e)
		cancel()
		if err != nil {
			log.Errorf("[audit][workerID:%d] failed to index event: %v", workerID, err)
			continue
		}
		log.Debugf("[audit][workerID:%d][%s] event indexed", workerID, shorten(e.RequestID))
	}
	log.Debugf("[audit][workerID:%d] jobs channel closed, exiting worker", workerID)
}

func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
