package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// TokenFetcher превращает множество идентификаторов получателей в множество
// push-токенов, разбивая lookup на чанки не больше потолка хранилища.
type TokenFetcher struct {
	users  UserStore
	logger *zap.Logger
}

func NewTokenFetcher(users UserStore, logger *zap.Logger) *TokenFetcher {
	return &TokenFetcher{
		users:  users,
		logger: logger.Named("token_fetcher"),
	}
}

// FetchTokens возвращает токены получателей без дубликатов. Пользователи без
// документа или без токена молча исключаются. Любая ошибка одного чанка
// обрывает весь fetch: частичная рассылка при сбое хранилища хуже,
// чем громкий отказ всей инвокации.
func (f *TokenFetcher) FetchTokens(ctx context.Context, ids []string) ([]string, error) {
	batchSize := f.users.BatchCeiling()

	tokens := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))

	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[i:end]

		records, err := f.users.GetByIDs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("ошибка пакетного получения пользователей (чанк %d-%d): %w", i, end, err)
		}

		for _, rec := range records {
			if !rec.HasPushToken() {
				f.logger.Debug("У пользователя нет push-токена, пропускаем", zap.String("user_id", rec.ID))
				continue
			}
			// Дедупликация по значению токена: два идентификатора могут
			// резолвиться в один и тот же токен
			if _, ok := seen[rec.PushToken]; ok {
				continue
			}
			seen[rec.PushToken] = struct{}{}
			tokens = append(tokens, rec.PushToken)
		}
	}

	f.logger.Debug("Токены получателей собраны",
		zap.Int("recipients", len(ids)),
		zap.Int("tokens", len(tokens)),
	)
	return tokens, nil
}
