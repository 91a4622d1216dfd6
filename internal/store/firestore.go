package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chatzilla-server/push-service/internal/config"
	"chatzilla-server/push-service/internal/models"
)

const (
	usersCollection  = "users"
	groupsCollection = "groups"

	// UserBatchCeiling — лимит Firestore на количество значений в одном
	// in-запросе. Константа хранилища, сервис ее не выбирает.
	UserBatchCeiling = 30
)

// NewFirestoreClient инициализирует Firebase App и возвращает клиент Firestore.
func NewFirestoreClient(ctx context.Context, cfg config.FirestoreConfig, logger *zap.Logger) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения клиента Firestore: %w", err)
	}

	logger.Info("Клиент Firestore успешно инициализирован", zap.String("project_id", cfg.ProjectID))
	return client, nil
}

// --- Хранилище пользователей ---

type FirestoreUserStore struct {
	client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreUserStore(client *firestore.Client, logger *zap.Logger) *FirestoreUserStore {
	return &FirestoreUserStore{
		client: client,
		logger: logger.Named("firestore_user_store"),
	}
}

func (s *FirestoreUserStore) BatchCeiling() int {
	return UserBatchCeiling
}

// GetByIDs выполняет один in-запрос по идентификаторам документов.
// Пользователи без документа в результат не попадают — это не ошибка.
func (s *FirestoreUserStore) GetByIDs(ctx context.Context, ids []string) ([]models.UserRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > UserBatchCeiling {
		return nil, fmt.Errorf("размер пакета %d превышает лимит in-запроса %d", len(ids), UserBatchCeiling)
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, s.client.Collection(usersCollection).Doc(id))
	}

	iter := s.client.Collection(usersCollection).
		Where(firestore.DocumentID, "in", refs).
		Documents(ctx)
	defer iter.Stop()

	records := make([]models.UserRecord, 0, len(ids))
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения документов пользователей: %w", err)
		}

		var rec models.UserRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("ошибка разбора документа пользователя %s: %w", snap.Ref.ID, err)
		}
		rec.ID = snap.Ref.ID
		records = append(records, rec)
	}

	s.logger.Debug("Пакетный lookup пользователей выполнен",
		zap.Int("requested", len(ids)),
		zap.Int("found", len(records)),
	)
	return records, nil
}

// --- Хранилище групп ---

type FirestoreGroupStore struct {
	client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreGroupStore(client *firestore.Client, logger *zap.Logger) *FirestoreGroupStore {
	return &FirestoreGroupStore{
		client: client,
		logger: logger.Named("firestore_group_store"),
	}
}

// GetByID возвращает (nil, nil), если группы нет: удаленная группа —
// штатный пропуск для резолвера, а не отказ хранилища.
func (s *FirestoreGroupStore) GetByID(ctx context.Context, id string) (*models.Group, error) {
	snap, err := s.client.Collection(groupsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			s.logger.Debug("Группа не найдена", zap.String("group_id", id))
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения документа группы %s: %w", id, err)
	}

	var group models.Group
	if err := snap.DataTo(&group); err != nil {
		return nil, fmt.Errorf("ошибка разбора документа группы %s: %w", id, err)
	}
	group.ID = snap.Ref.ID

	return &group, nil
}
