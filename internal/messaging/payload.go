package messaging

import "chatzilla-server/push-service/internal/models"

// Scope определяется тем, какой триггер платформы сработал.
const (
	ScopeIndividual = "individual" // chatRooms/{roomId}/messages/{messageId}
	ScopeGroup      = "group"      // groups/{groupId}/messages/{messageId}
)

// MessageCreatedEvent — событие "создан документ сообщения", которое платформа
// кладет в очередь на каждый новый документ. Параметры пути триггера
// (roomId / groupId / messageId) приходят отдельными полями, тело документа — в
// Message. Доставка at-least-once: одно и то же событие может прийти повторно,
// повторная инвокация просто отправит дубликат push (принятое ограничение).
type MessageCreatedEvent struct {
	Scope     string         `json:"scope"`
	RoomID    string         `json:"room_id,omitempty"`
	GroupID   string         `json:"group_id,omitempty"`
	MessageID string         `json:"message_id"`
	Message   models.Message `json:"message"`
}
