package store

import (
	"context"

	"go.uber.org/zap"

	"chatzilla-server/push-service/internal/models"
)

// --- Заглушки хранилищ ---
// Используются при запуске без настроенного Firestore (локальная разработка).

type StubUserStore struct {
	logger *zap.Logger
	users  map[string]models.UserRecord
}

func NewStubUserStore(logger *zap.Logger) *StubUserStore {
	return &StubUserStore{
		logger: logger.Named("stub_user_store"),
		users:  make(map[string]models.UserRecord),
	}
}

func (s *StubUserStore) BatchCeiling() int {
	return UserBatchCeiling
}

func (s *StubUserStore) GetByIDs(ctx context.Context, ids []string) ([]models.UserRecord, error) {
	s.logger.Warn("Используется ЗАГЛУШКА хранилища пользователей", zap.Strings("ids", ids))
	records := make([]models.UserRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.users[id]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

type StubGroupStore struct {
	logger *zap.Logger
	groups map[string]models.Group
}

func NewStubGroupStore(logger *zap.Logger) *StubGroupStore {
	return &StubGroupStore{
		logger: logger.Named("stub_group_store"),
		groups: make(map[string]models.Group),
	}
}

func (s *StubGroupStore) GetByID(ctx context.Context, id string) (*models.Group, error) {
	s.logger.Warn("Используется ЗАГЛУШКА хранилища групп", zap.String("group_id", id))
	if group, ok := s.groups[id]; ok {
		return &group, nil
	}
	return nil, nil
}
