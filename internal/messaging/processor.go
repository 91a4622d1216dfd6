package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chatzilla-server/push-service/internal/models"
)

// MessageDispatcher определяет интерфейс пайплайна диспетчеризации.
// Интерфейс объявлен здесь, а не в пакете service, чтобы избежать
// цикла импорта.
type MessageDispatcher interface {
	// Dispatch возвращает (nil, nil) при штатном пропуске, результат провайдера
	// при успешной отправке и ошибку при отказе коллаборатора.
	Dispatch(ctx context.Context, event MessageCreatedEvent) (*models.SendResult, error)
}

// Processor обрабатывает одно событие очереди = одну инвокацию пайплайна.
type Processor struct {
	logger     *zap.Logger
	dispatcher MessageDispatcher
}

func NewProcessor(logger *zap.Logger, dispatcher MessageDispatcher) *Processor {
	return &Processor{
		logger:     logger.Named("processor"),
		dispatcher: dispatcher,
	}
}

// ProcessDelivery — склейка с AMQP: десериализация, ack/nack.
func (p *Processor) ProcessDelivery(ctx context.Context, d amqp.Delivery) {
	p.logger.Debug("Обработка события", zap.Uint64("delivery_tag", d.DeliveryTag))

	var event MessageCreatedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		p.logger.Error("Ошибка десериализации JSON события",
			zap.Error(err),
			zap.ByteString("body", d.Body),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		// Битое событие повторять бессмысленно (nack, requeue=false)
		if ackErr := d.Nack(false, false); ackErr != nil {
			p.logger.Error("Ошибка Nack события после ошибки JSON", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}

	// Таймаут на всю инвокацию: чтение хранилищ + запрос к провайдеру
	processCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := p.Process(processCtx, event); err != nil {
		p.logger.Error("Ошибка обработки события",
			zap.Error(err),
			zap.String("message_id", event.MessageID),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		// Отказ коллаборатора отдаем каналу ошибок платформы (DLX очереди);
		// внутренних повторов нет, повтор уведомления решает политика триггера.
		if ackErr := d.Nack(false, false); ackErr != nil {
			p.logger.Error("Ошибка Nack события после ошибки обработки", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		p.logger.Error("Ошибка Ack события после успешной обработки", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		return
	}
	p.logger.Debug("Событие обработано и подтверждено (Ack)", zap.Uint64("delivery_tag", d.DeliveryTag))
}

// Process выполняет одну инвокацию пайплайна. Штатный пропуск — не ошибка.
func (p *Processor) Process(ctx context.Context, event MessageCreatedEvent) error {
	log := p.logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("scope", event.Scope),
		zap.String("message_id", event.MessageID),
	)

	result, err := p.dispatcher.Dispatch(ctx, event)
	if err != nil {
		return err
	}

	if result == nil {
		log.Info("Инвокация завершена пропуском, уведомление не отправлялось")
		return nil
	}

	log.Info("Инвокация завершена, уведомление отправлено",
		zap.Int("provider_status", result.StatusCode))
	return nil
}
