// Package audit batches client-side events (fetches, redemptions, discarded
// responses) and hands them to processors off the hot path.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

type EventKind string

const (
	EventFeedFetch    EventKind = "feed_fetch"
	EventFeedStale    EventKind = "feed_stale_drop"
	EventRedeemTry    EventKind = "redeem_attempt"
	EventRedeemResult EventKind = "redeem_result"
	EventSession      EventKind = "session"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	StoreID   string    `json:"storeId,omitempty"`
	OrderCode string    `json:"orderCode,omitempty"`
	Message   string    `json:"message,omitempty"`
}

type PoolConfig struct {
	BatchSize   int
	Timeout     time.Duration
	ChannelSize int
}

type Processor interface {
	Process(batch []Event) error
}

// Recorder is what controllers depend on; tests substitute it freely.
type Recorder interface {
	Record(e Event)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(Event) {}

type StdoutProcessor struct {
	Filter string
}

func (p *StdoutProcessor) Process(batch []Event) error {
	for _, rec := range batch {
		if p.Filter != "" &&
			!strings.Contains(strings.ToLower(rec.Message), strings.ToLower(p.Filter)) {
			continue
		}
		fmt.Printf("AUDIT: %s | %s | store=%s order=%s | %s\n",
			rec.Timestamp.Format(time.RFC3339), rec.Kind, rec.StoreID, rec.OrderCode, rec.Message)
	}
	return nil
}

// HTTPProcessor ships batches to the backend events endpoint as JSON.
type HTTPProcessor struct {
	Endpoint string
	Client   *http.Client
}

func (p *HTTPProcessor) Process(batch []Event) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("HTTPProcessor marshal: %w", err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(p.Endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPProcessor post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("HTTPProcessor status: %d", resp.StatusCode)
	}
	return nil
}

type WorkerPool struct {
	inputCh    chan Event
	processors []Processor
	batchSize  int
	timeout    time.Duration

	wg sync.WaitGroup
}

func NewWorkerPool(cfg PoolConfig, processors ...Processor) *WorkerPool {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ChannelSize < 1 {
		cfg.ChannelSize = 256
	}
	return &WorkerPool{
		inputCh:    make(chan Event, cfg.ChannelSize),
		processors: processors,
		batchSize:  cfg.BatchSize,
		timeout:    cfg.Timeout,
	}
}

// Record enqueues an event without blocking; the event is dropped when the
// queue is full.
func (p *WorkerPool) Record(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	select {
	case p.inputCh <- e:
	default:
		log.Printf("audit: queue full, dropping %s event", e.Kind)
	}
}

func (p *WorkerPool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.worker(ctx)
		}()
	}
}

func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context) {
	var batch []Event
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	for {
		select {
		case e := <-p.inputCh:
			batch = append(batch, e)
			if len(batch) >= p.batchSize {
				p.flush(batch)
				batch = nil
				resetTimer(timer, p.timeout)
			}
		case <-timer.C:
			if len(batch) > 0 {
				p.flush(batch)
				batch = nil
			}
			timer.Reset(p.timeout)
		case <-ctx.Done():
			p.drain(batch)
			return
		}
	}
}

func (p *WorkerPool) drain(batch []Event) {
	for {
		select {
		case e := <-p.inputCh:
			batch = append(batch, e)
		default:
			if len(batch) > 0 {
				p.flush(batch)
			}
			return
		}
	}
}

func (p *WorkerPool) flush(batch []Event) {
	for _, proc := range p.processors {
		if err := proc.Process(batch); err != nil {
			log.Printf("audit: processor error: %v", err)
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
