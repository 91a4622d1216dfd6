package service

import (
	"context"

	"chatzilla-server/push-service/internal/models"
)

// UserStore определяет интерфейс хранилища пользователей.
type UserStore interface {
	// GetByIDs выполняет один пакетный lookup по множеству идентификаторов.
	// Размер ids не должен превышать BatchCeiling; пользователи без документа
	// в результат просто не попадают (не ошибка).
	GetByIDs(ctx context.Context, ids []string) ([]models.UserRecord, error)
	// BatchCeiling — максимальный размер одного пакетного lookup.
	// Константа коллаборатора (лимит in-запроса хранилища), не политика сервиса.
	BatchCeiling() int
}

// GroupStore определяет интерфейс хранилища групп.
type GroupStore interface {
	// GetByID возвращает (nil, nil), если группа не найдена —
	// для резолвера это штатный пропуск, а не ошибка.
	GetByID(ctx context.Context, id string) (*models.Group, error)
}
