package messaging

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer читает события о новых сообщениях из очереди и раздает их воркерам.
// Каждая инвокация независима: воркеры не разделяют изменяемого состояния,
// поэтому конкурентность — чистая оптимизация пропускной способности.
type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	cancelFunc  context.CancelFunc
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency int, processor *Processor) (*Consumer, error) {
	c := &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer"),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}
	return c, nil
}

func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("не удалось объявить очередь '%s': %w", c.queueName, err)
	}
	c.logger.Info("Очередь успешно объявлена/найдена", zap.String("queue", q.Name))

	// Не берем в обработку больше сообщений, чем есть воркеров
	err = ch.Qos(c.concurrency, 0, false)
	if err != nil {
		return fmt.Errorf("не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"push-dispatch-consumer", // consumer tag
		false,                    // auto-ack = false
		false,                    // exclusive
		false,                    // no-local
		false,                    // no-wait
		nil,                      // args
	)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать консьюмера: %w", err)
	}

	c.logger.Info("Консьюмер запущен, ожидание событий о сообщениях...", zap.Int("concurrency", c.concurrency))

	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			logger := c.logger.With(zap.Int("worker_id", workerID))
			logger.Info("Воркер запущен")
			for {
				select {
				case <-ctx.Done():
					logger.Info("Воркер останавливается из-за отмены контекста")
					return
				case <-c.stopChannel:
					logger.Info("Воркер останавливается из-за сигнала stopChannel")
					return
				case d, ok := <-msgs:
					if !ok {
						logger.Info("Канал сообщений закрыт, воркер завершает работу")
						return
					}
					logger.Debug("Получено событие", zap.Uint64("delivery_tag", d.DeliveryTag))
					c.processor.ProcessDelivery(ctx, d)
				}
			}
		}(i)
	}

	c.logger.Info("Все воркеры консьюмера запущены")
	<-c.stopChannel // Блокируемся до вызова Stop()
	c.logger.Info("Получен сигнал остановки, отменяем контекст воркеров...")
	c.cancelFunc()

	c.logger.Info("Ожидание завершения всех воркеров...")
	c.wg.Wait()
	c.logger.Info("Все воркеры консьюмера остановлены")
	return nil
}

func (c *Consumer) Stop() {
	c.logger.Info("Инициирована остановка консьюмера...")
	close(c.stopChannel)
}
