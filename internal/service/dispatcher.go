package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chatzilla-server/push-service/internal/messaging"
	"chatzilla-server/push-service/internal/models"
)

// Config — неизменяемая конфигурация пайплайна, передается при конструировании.
// Никаких зашитых литералов: тесты подставляют фикстуры.
type Config struct {
	AppID    string   // Идентификатор приложения у провайдера
	Defaults Defaults // Дефолтные строки уведомлений
}

// Dispatcher — пайплайн диспетчеризации: классификация события, резолв
// получателей, сбор токенов, сборка и отправка уведомления. Состояния между
// инвокациями нет, один и тот же вход всегда дает одну и ту же попытку отправки.
type Dispatcher struct {
	groups  GroupStore
	fetcher *TokenFetcher
	sender  NotificationSender
	cfg     Config
	logger  *zap.Logger
}

func NewDispatcher(groups GroupStore, fetcher *TokenFetcher, sender NotificationSender, cfg Config, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		groups:  groups,
		fetcher: fetcher,
		sender:  sender,
		cfg:     cfg,
		logger:  logger.Named("dispatcher"),
	}
}

// Убедимся, что *Dispatcher реализует интерфейс из пакета messaging
var _ messaging.MessageDispatcher = (*Dispatcher)(nil)

// Dispatch обрабатывает одно событие. Штатный пропуск (пустая запись, свое же
// сообщение, удаленная группа, никто без токенов) — это (nil, nil), не ошибка:
// такие условия частые и ожидаемые. Ошибка возвращается только при отказе
// коллаборатора (хранилище, провайдер).
func (d *Dispatcher) Dispatch(ctx context.Context, event messaging.MessageCreatedEvent) (*models.SendResult, error) {
	log := d.logger.With(
		zap.String("scope", event.Scope),
		zap.String("message_id", event.MessageID),
	)

	if event.Message.IsEmpty() {
		log.Info("Событие без данных сообщения — пропускаем")
		return nil, nil
	}

	switch event.Scope {
	case messaging.ScopeIndividual:
		return d.dispatchIndividual(ctx, log, event.Message)
	case messaging.ScopeGroup:
		return d.dispatchGroup(ctx, log, event)
	default:
		log.Warn("Неизвестный scope события — пропускаем", zap.String("scope", event.Scope))
		return nil, nil
	}
}

func (d *Dispatcher) dispatchIndividual(ctx context.Context, log *zap.Logger, msg models.Message) (*models.SendResult, error) {
	if msg.ReceiverID == "" {
		log.Info("В сообщении нет receiverId — пропускаем")
		return nil, nil
	}

	// Свое же сообщение отправителю не доставляем
	if msg.ReceiverID == msg.SenderID {
		log.Info("Отправитель совпадает с получателем — пропускаем")
		return nil, nil
	}

	tokens, err := d.fetcher.FetchTokens(ctx, []string{msg.ReceiverID})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения токена получателя %s: %w", msg.ReceiverID, err)
	}
	if len(tokens) == 0 {
		log.Info("У получателя нет push-токена — пропускаем", zap.String("receiver_id", msg.ReceiverID))
		return nil, nil
	}

	req := BuildIndividualNotification(d.cfg.AppID, d.cfg.Defaults, msg, tokens)
	result, err := d.sender.Send(ctx, req)
	if err != nil {
		return result, fmt.Errorf("ошибка отправки личного уведомления: %w", err)
	}

	log.Info("Уведомление о личном сообщении отправлено", zap.String("receiver_id", msg.ReceiverID))
	return result, nil
}

func (d *Dispatcher) dispatchGroup(ctx context.Context, log *zap.Logger, event messaging.MessageCreatedEvent) (*models.SendResult, error) {
	if event.GroupID == "" {
		log.Info("В событии нет groupId — пропускаем")
		return nil, nil
	}

	group, err := d.groups.GetByID(ctx, event.GroupID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения группы %s: %w", event.GroupID, err)
	}
	if group == nil {
		log.Info("Группа не найдена — пропускаем", zap.String("group_id", event.GroupID))
		return nil, nil
	}

	msg := event.Message
	recipients := recipientsWithoutSender(group.Members, msg.SenderID)
	if len(recipients) == 0 {
		log.Info("В группе нет других участников — пропускаем", zap.String("group_id", event.GroupID))
		return nil, nil
	}

	tokens, err := d.fetcher.FetchTokens(ctx, recipients)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения токенов участников группы %s: %w", event.GroupID, err)
	}
	if len(tokens) == 0 {
		log.Info("Ни у одного участника группы нет push-токена — пропускаем", zap.String("group_id", event.GroupID))
		return nil, nil
	}

	req := BuildGroupNotification(d.cfg.AppID, d.cfg.Defaults, group, msg, tokens)
	result, err := d.sender.Send(ctx, req)
	if err != nil {
		return result, fmt.Errorf("ошибка отправки группового уведомления: %w", err)
	}

	log.Info("Групповое уведомление отправлено",
		zap.Int("recipient_count", len(tokens)),
		zap.String("group_name", group.NameOr(d.cfg.Defaults.GroupName)),
	)
	return result, nil
}

// recipientsWithoutSender строит множество получателей: участники группы без
// отправителя и без дубликатов (members может содержать повторы).
func recipientsWithoutSender(members []string, senderID string) []string {
	recipients := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, id := range members {
		if id == "" || id == senderID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients
}
