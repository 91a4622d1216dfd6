package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"chatzilla-server/push-service/internal/models"
)

// NotificationSender определяет интерфейс клиента доставки push-уведомлений.
type NotificationSender interface {
	// Send выполняет один best-effort вызов провайдера. Без повторов и
	// очередей: неуспех — это ошибка инвокации, решение о повторе за
	// платформой триггера.
	Send(ctx context.Context, req models.NotificationRequest) (*models.SendResult, error)
}

// HTTPClient — интерфейс *http.Client для мокирования.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// oneSignalEnvelope — конверт запроса OneSignal REST API.
// Локаль фиксирована: клиентские приложения локализуют сами.
type oneSignalEnvelope struct {
	AppID                  string            `json:"app_id"`
	IncludeSubscriptionIDs []string          `json:"include_subscription_ids"`
	Headings               map[string]string `json:"headings"`
	Contents               map[string]string `json:"contents"`
}

type oneSignalSender struct {
	client HTTPClient
	apiURL string
	apiKey string // REST API Key, никогда не логируется
	logger *zap.Logger
}

// NewOneSignalSender создает клиента OneSignal REST API.
// Если ключ не задан, возвращается заглушка, которая только логирует.
func NewOneSignalSender(client HTTPClient, apiURL, apiKey string, logger *zap.Logger) NotificationSender {
	if apiKey == "" {
		logger.Warn("ONESIGNAL_REST_API_KEY не задан, используется заглушка отправителя")
		return &stubOneSignalSender{logger: logger.Named("stub_onesignal_sender")}
	}
	logger.Info("Инициализация OneSignal sender", zap.String("api_url", apiURL))
	return &oneSignalSender{
		client: client,
		apiURL: apiURL,
		apiKey: apiKey,
		logger: logger.Named("onesignal_sender"),
	}
}

func (s *oneSignalSender) Send(ctx context.Context, req models.NotificationRequest) (*models.SendResult, error) {
	// Пустой список получателей здесь — нарушение контракта вызывающего:
	// пайплайн обязан оборвать инвокацию раньше.
	if len(req.SubscriptionIDs) == 0 {
		return nil, fmt.Errorf("нарушение контракта: пустой список subscription ids")
	}

	log := s.logger.With(zap.Int("subscription_count", len(req.SubscriptionIDs)))

	envelope := oneSignalEnvelope{
		AppID:                  req.AppID,
		IncludeSubscriptionIDs: req.SubscriptionIDs,
		Headings:               map[string]string{"en": req.Title},
		Contents:               map[string]string{"en": req.Body},
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса OneSignal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса к OneSignal: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		log.Error("Ошибка выполнения HTTP запроса к OneSignal", zap.Error(err))
		return nil, fmt.Errorf("ошибка запроса к OneSignal: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа OneSignal: %w", err)
	}

	result := &models.SendResult{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(respBody),
	}

	// Сырой ответ пишем в лог как есть — по схеме он не валидируется
	log.Info("Ответ OneSignal",
		zap.Int("status_code", resp.StatusCode),
		zap.ByteString("response", respBody),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return result, fmt.Errorf("OneSignal вернул статус %d", resp.StatusCode)
	}

	return result, nil
}

// --- Заглушка для NotificationSender ---

type stubOneSignalSender struct {
	logger *zap.Logger
}

func (s *stubOneSignalSender) Send(ctx context.Context, req models.NotificationRequest) (*models.SendResult, error) {
	if len(req.SubscriptionIDs) == 0 {
		return nil, fmt.Errorf("нарушение контракта: пустой список subscription ids")
	}
	s.logger.Info("ЗАГЛУШКА: Отправка OneSignal",
		zap.Strings("subscription_ids", req.SubscriptionIDs),
		zap.String("title", req.Title),
		zap.String("body", req.Body),
	)
	// Имитируем успешный ответ провайдера
	return &models.SendResult{
		StatusCode: http.StatusOK,
		Body:       json.RawMessage(`{"id":"stub"}`),
	}, nil
}
