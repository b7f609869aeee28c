package kafka

import (
	"context"
	"errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"sync"
	"time"
)

var ErrProducerClosed = errors.New("producer closed")

// Writer is the part of *kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages for one topic and writes them from a single
// goroutine. Publish only enqueues; write errors are logged.
type Producer struct {
	w            Writer
	inbox        chan kafka.Message
	closeCh      chan struct{}
	writeTimeout time.Duration
	log          zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int, log zerolog.Logger) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, buf, log.With().Str("topic", topic).Logger())
}

func NewProducerWithWriter(w Writer, buf int, log zerolog.Logger) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:            w,
		inbox:        make(chan kafka.Message, buf),
		closeCh:      make(chan struct{}),
		writeTimeout: 10 * time.Second,
		log:          log,
	}
}

// Start runs the write loop. Cancelling ctx closes the producer; whatever is
// still buffered is flushed before the writer is closed.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		done := ctx.Done()
		for {
			select {
			case <-done:
				done = nil
				// Close may wait on a Publish blocked on a full inbox.
				go p.Close()
			case m, ok := <-p.inbox:
				if !ok {
					if err := p.w.Close(); err != nil {
						p.log.Error().Err(err).Msg("close kafka writer")
					}
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error().Err(err).Str("key", string(m.Key)).Msg("kafka write failed")
	}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages. Safe to call more than once.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// WaitClosed blocks until the loop has flushed and closed the writer.
func (p *Producer) WaitClosed() { <-p.closeCh }
