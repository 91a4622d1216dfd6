package service

import (
	"fmt"

	"chatzilla-server/push-service/internal/models"
)

// Defaults — дефолтные строки уведомлений. Вынесены в конфигурацию,
// чтобы тесты могли подставлять фикстуры вместо боевых значений.
type Defaults struct {
	IndividualTitle string // Заголовок личного сообщения без имени отправителя
	IndividualBody  string // Текст личного сообщения без content
	GroupName       string // Имя группы, если оно не заполнено
	GroupSender     string // Имя отправителя в группе, если оно не заполнено
	GroupBody       string // Текст группового сообщения без content
}

// DefaultStrings возвращает боевые дефолтные строки.
func DefaultStrings() Defaults {
	return Defaults{
		IndividualTitle: "New Message",
		IndividualBody:  "You have a new message.",
		GroupName:       "Group",
		GroupSender:     "Someone",
		GroupBody:       "New message in group.",
	}
}

// BuildIndividualNotification собирает уведомление о личном сообщении.
// Чистая функция: никакого I/O и побочных эффектов.
func BuildIndividualNotification(appID string, d Defaults, msg models.Message, subscriptionIDs []string) models.NotificationRequest {
	return models.NotificationRequest{
		AppID:           appID,
		SubscriptionIDs: subscriptionIDs,
		Title:           msg.SenderNameOr(d.IndividualTitle),
		Body:            msg.ContentOr(d.IndividualBody),
	}
}

// BuildGroupNotification собирает уведомление о сообщении в группе.
// Формат заголовка: "[<имя группы>] <имя отправителя>".
func BuildGroupNotification(appID string, d Defaults, group *models.Group, msg models.Message, subscriptionIDs []string) models.NotificationRequest {
	return models.NotificationRequest{
		AppID:           appID,
		SubscriptionIDs: subscriptionIDs,
		Title:           fmt.Sprintf("[%s] %s", group.NameOr(d.GroupName), msg.SenderNameOr(d.GroupSender)),
		Body:            msg.ContentOr(d.GroupBody),
	}
}
