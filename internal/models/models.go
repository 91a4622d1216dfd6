package models

import "encoding/json"

// Message — тело документа сообщения чата, каким его создают клиентские
// приложения. Все поля, кроме senderId, опциональны: документ может прийти
// неполным, поэтому доступ к опциональным полям идет через аксессоры
// с дефолтным значением, а не напрямую.
type Message struct {
	SenderID   string `json:"senderId" firestore:"senderId"`
	ReceiverID string `json:"receiverId,omitempty" firestore:"receiverId,omitempty"`
	Content    string `json:"content,omitempty" firestore:"content,omitempty"`
	SenderName string `json:"senderName,omitempty" firestore:"senderName,omitempty"`
}

// IsEmpty сообщает, что документ пришел пустым (платформа может доставить
// частичное событие — это штатный случай пропуска, не ошибка).
func (m Message) IsEmpty() bool {
	return m.SenderID == "" && m.ReceiverID == "" && m.Content == "" && m.SenderName == ""
}

// SenderNameOr возвращает имя отправителя или дефолт, если оно не заполнено.
func (m Message) SenderNameOr(def string) string {
	if m.SenderName == "" {
		return def
	}
	return m.SenderName
}

// ContentOr возвращает текст сообщения или дефолт, если он не заполнен.
func (m Message) ContentOr(def string) string {
	if m.Content == "" {
		return def
	}
	return m.Content
}

// UserRecord — документ пользователя из хранилища. Сервис его только читает.
// Поле fcmToken опционально: пользователь без зарегистрированного токена
// просто не может получить push.
type UserRecord struct {
	ID        string `json:"id" firestore:"-"`
	PushToken string `json:"fcmToken,omitempty" firestore:"fcmToken,omitempty"`
}

// HasPushToken сообщает, есть ли у пользователя зарегистрированный токен.
func (u UserRecord) HasPushToken() bool {
	return u.PushToken != ""
}

// Group — документ группы. Members может содержать дубликаты из-за
// некорректных записей на стороне клиентов, резолвер обязан их схлопнуть.
type Group struct {
	ID      string   `json:"id" firestore:"-"`
	Name    string   `json:"name,omitempty" firestore:"name,omitempty"`
	Members []string `json:"members" firestore:"members"`
}

// NameOr возвращает имя группы или дефолт, если оно не заполнено.
func (g Group) NameOr(def string) string {
	if g.Name == "" {
		return def
	}
	return g.Name
}

// NotificationRequest — провайдеро-независимое уведомление, собранное
// пайплайном. Создается заново на каждый вызов и никогда не персистится.
// Инвариант: SubscriptionIDs непуст (вызывающий обрывает пайплайн раньше).
type NotificationRequest struct {
	AppID           string
	SubscriptionIDs []string
	Title           string
	Body            string
}

// SendResult — результат обращения к push-провайдеру: HTTP-статус и сырое
// тело ответа. Тело не валидируется по схеме, оно нужно для логов.
type SendResult struct {
	StatusCode int
	Body       json.RawMessage
}
