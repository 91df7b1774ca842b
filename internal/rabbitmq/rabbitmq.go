package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cutekitek/rankode-jplag/internal/jobs"
	"github.com/cutekitek/rankode-jplag/internal/mappers"
	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/repository/models"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ReqQueue  = "jplag-req"
	RespQueue = "jplag-resp"
)

type RabbitMqHandlerConfig struct {
	Login        string
	Password     string
	Host         string
	Port         int
	WorkersCount int
}

type JobProcessor interface {
	Process(ctx context.Context, contest string, units []*dto.RunRequest, progress jobs.ProgressFunc) (*models.JobReport, error)
}

type RabbitMQHandler struct {
	cfg       RabbitMqHandlerConfig
	processor JobProcessor
	sources   mappers.SourceFetcher
	tasksChan chan models.JobMessage
	wg        *sync.WaitGroup
	listeners *sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	// mu guards the fields below.
	mu           sync.Mutex
	conn         *amqp.Connection
	consumerChan *amqp.Channel
	producerChan *amqp.Channel
	closed       bool
}

func NewRabbitMQHandler(cfg RabbitMqHandlerConfig, processor JobProcessor, sources mappers.SourceFetcher) (*RabbitMQHandler, error) {
	if cfg.WorkersCount <= 0 {
		return nil, errors.New("workers count must be positive")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RabbitMQHandler{
		cfg:       cfg,
		processor: processor,
		sources:   sources,
		tasksChan: make(chan models.JobMessage),
		wg:        &sync.WaitGroup{},
		listeners: &sync.WaitGroup{},
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func (r *RabbitMQHandler) Start() error {
	if err := r.connect(); err != nil {
		return err
	}
	if err := r.startConsumer(); err != nil {
		return errors.Wrap(err, "failed to start consumer")
	}
	if err := r.startProducer(); err != nil {
		return errors.Wrap(err, "failed to start producer")
	}
	for i := 0; i < r.cfg.WorkersCount; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return nil
}

// Close stops consuming, interrupts running jobs and waits for workers to exit.
// Deliveries that were not handed to a worker are requeued.
func (r *RabbitMQHandler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	consumer := r.consumerChan
	r.mu.Unlock()

	r.cancel()
	if consumer != nil {
		consumer.Close()
	}
	r.listeners.Wait()
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.producerChan != nil {
		r.producerChan.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

func (r *RabbitMQHandler) startConsumer() error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	channel, err := conn.Channel()
	if err != nil {
		return err
	}
	queue, err := channel.QueueDeclare(ReqQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := channel.Qos(r.cfg.WorkersCount, 0, false); err != nil {
		return err
	}
	del, err := channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		channel.Close()
		return errors.New("handler is closed")
	}
	r.consumerChan = channel
	r.listeners.Add(1)
	go r.listener(del)
	return nil
}

func (r *RabbitMQHandler) startProducer() error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()

	channel, err := conn.Channel()
	if err != nil {
		return err
	}
	if _, err := channel.QueueDeclare(RespQueue, true, false, false, false, nil); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		channel.Close()
		return errors.New("handler is closed")
	}
	r.producerChan = channel
	return nil
}

func (r *RabbitMQHandler) connect() error {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d", r.cfg.Login, r.cfg.Password, r.cfg.Host, r.cfg.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return errors.New("handler is closed")
	}
	r.conn = conn
	r.mu.Unlock()

	errChan := conn.NotifyClose(make(chan *amqp.Error, 1))
	go r.reconnect(errChan)
	return nil
}

func (r *RabbitMQHandler) reconnect(errChan <-chan *amqp.Error) {
	amqpErr, ok := <-errChan
	if !ok || r.isClosed() {
		return
	}
	slog.Error("rabbitmq connection lost", "error", amqpErr)

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-time.After(time.Second * 15):
		}
		if err := r.connect(); err != nil {
			slog.Error("rabbitmq reconnect failed", "error", err)
			continue
		}
		if err := r.startConsumer(); err != nil {
			slog.Error("failed to restart consumer", "error", err)
			continue
		}
		if err := r.startProducer(); err != nil {
			slog.Error("failed to restart producer", "error", err)
			continue
		}
		return
	}
}

func (r *RabbitMQHandler) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *RabbitMQHandler) listener(del <-chan amqp.Delivery) {
	defer r.listeners.Done()

	for {
		var data amqp.Delivery
		select {
		case <-r.ctx.Done():
			return
		case d, ok := <-del:
			if !ok {
				return
			}
			data = d
		}

		var task models.JobMessage
		if err := json.Unmarshal(data.Body, &task); err != nil {
			slog.Error("invalid task message", "message", string(data.Body))
			data.Nack(false, false)
			continue
		}

		select {
		case r.tasksChan <- task:
			data.Ack(false)
		case <-r.ctx.Done():
			data.Nack(false, true)
			return
		}
	}
}

func (r *RabbitMQHandler) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case task := <-r.tasksChan:
			r.send(r.handle(task))
		}
	}
}

func (r *RabbitMQHandler) handle(task models.JobMessage) *models.JobReport {
	units, err := mappers.JobMessageToRequests(r.ctx, &task, r.sources)
	if err != nil {
		return &models.JobReport{Id: task.Id, Contest: task.Contest, Error: err.Error()}
	}

	report, err := r.processor.Process(r.ctx, task.Contest, units, func(done, total int) {
		slog.Debug("jplag progress", "job", task.Id, "contest", task.Contest, "done", done, "total", total)
	})
	if err != nil {
		slog.Error("jplag job failed", "job", task.Id, "contest", task.Contest, "error", err)
		return &models.JobReport{Id: task.Id, Contest: task.Contest, Error: err.Error()}
	}
	report.Id = task.Id
	return report
}

func (r *RabbitMQHandler) send(data *models.JobReport) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode job report", "error", err)
		return
	}
	r.mu.Lock()
	producer := r.producerChan
	r.mu.Unlock()
	if producer == nil {
		slog.Error("no producer channel, job report dropped", "job", data.Id)
		return
	}
	err = producer.PublishWithContext(context.Background(), "", RespQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		slog.Error("failed to send response to queue", "error", err)
	}
}
