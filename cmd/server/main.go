package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chatzilla-server/push-service/internal/config"
	"chatzilla-server/push-service/internal/messaging"
	"chatzilla-server/push-service/internal/service"
	"chatzilla-server/push-service/internal/store"
	"chatzilla-server/push-service/pkg/logger"
)

func main() {
	// --- Загрузка конфигурации ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// --- Инициализация логгера ---
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()
	sugar.Info("Логгер инициализирован", zap.String("logLevel", cfg.Log.Level))

	// --- Подключение к RabbitMQ ---
	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQ.URI, zapLogger)
	if err != nil {
		sugar.Fatalf("Не удалось подключиться к RabbitMQ: %v", err)
	}
	defer rabbitConn.Close()
	sugar.Info("Успешно подключено к RabbitMQ")

	// --- Инициализация хранилищ ---
	var userStore service.UserStore
	var groupStore service.GroupStore

	if cfg.Firestore.ProjectID != "" {
		fsClient, err := store.NewFirestoreClient(context.Background(), cfg.Firestore, zapLogger)
		if err != nil {
			sugar.Fatalf("Ошибка инициализации клиента Firestore: %v", err)
		}
		defer fsClient.Close()
		userStore = store.NewFirestoreUserStore(fsClient, zapLogger)
		groupStore = store.NewFirestoreGroupStore(fsClient, zapLogger)
	} else {
		// Firestore не настроен (конфигурация отсутствует?), используем заглушки
		sugar.Warn("FIRESTORE_PROJECT_ID не задан, используются заглушки хранилищ.")
		userStore = store.NewStubUserStore(zapLogger)
		groupStore = store.NewStubGroupStore(zapLogger)
	}

	// --- Инициализация пайплайна диспетчеризации ---
	httpClient := &http.Client{
		Timeout: 10 * time.Second, // Общий таймаут запроса к провайдеру
	}
	sender := service.NewOneSignalSender(httpClient, cfg.OneSignal.APIURL, cfg.OneSignal.RestAPIKey, zapLogger)
	fetcher := service.NewTokenFetcher(userStore, zapLogger)
	dispatcher := service.NewDispatcher(groupStore, fetcher, sender, service.Config{
		AppID:    cfg.OneSignal.AppID,
		Defaults: service.DefaultStrings(),
	}, zapLogger)

	// --- Инициализация обработчика событий и консьюмера ---
	processor := messaging.NewProcessor(zapLogger, dispatcher)
	consumer, err := messaging.NewConsumer(rabbitConn, zapLogger, cfg.MessageQueueName, cfg.WorkerConcurrency, processor)
	if err != nil {
		sugar.Fatalf("Не удалось создать консьюмера RabbitMQ: %v", err)
	}

	// --- Запуск Health Check сервера ---
	healthSrv := startHealthCheckServer(cfg.HealthCheckPort, zapLogger)

	// --- Запуск консьюмера в отдельной горутине ---
	consumerErrChan := make(chan error, 1)
	go func() {
		sugar.Info("Запуск консьюмера RabbitMQ...")
		err := consumer.Start()
		if err != nil {
			sugar.Errorf("Консьюмер RabbitMQ завершился с ошибкой: %v", err)
		}
		consumerErrChan <- err
		sugar.Info("Консьюмер RabbitMQ остановлен.")
	}()

	// --- Ожидание сигнала завершения или ошибки консьюмера ---
	sugar.Info("Push-сервис запущен. Нажмите Ctrl+C для выхода.")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		sugar.Info("Получен сигнал завершения, начинаем остановку...")
	case err := <-consumerErrChan:
		if err != nil {
			sugar.Errorf("Консьюмер завершился с ошибкой, инициируем остановку: %v", err)
		} else {
			sugar.Info("Консьюмер завершился без ошибок, инициируем остановку.")
		}
	}

	// --- Graceful shutdown ---
	sugar.Info("Остановка Health Check сервера...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := healthSrv.Shutdown(ctxShutdown); err != nil {
		sugar.Errorf("Ошибка при остановке Health Check сервера: %v", err)
	}
	sugar.Info("Health Check сервер остановлен.")

	sugar.Info("Остановка консьюмера RabbitMQ...")
	consumer.Stop()

	<-consumerErrChan
	sugar.Info("Горутина консьюмера RabbitMQ подтвердила завершение.")

	sugar.Info("Push-сервис успешно остановлен.")
}

// startHealthCheckServer поднимает HTTP сервер с единственной ручкой /health.
func startHealthCheckServer(port string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		logger.Info("Запуск Health Check сервера", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ошибка запуска Health Check сервера", zap.Error(err))
		}
	}()

	return srv
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(uri string, logger *zap.Logger) (*amqp.Connection, error) {
	var connection *amqp.Connection
	var err error
	maxRetries := 50
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		connection, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Подключение к RabbitMQ успешно установлено")
			go func() {
				notifyClose := make(chan *amqp.Error)
				connection.NotifyClose(notifyClose)
				closeErr := <-notifyClose
				if closeErr != nil {
					logger.Error("Соединение с RabbitMQ разорвано", zap.Error(closeErr))
				}
			}()
			return connection, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ, попытка переподключения...",
			zap.Error(err),
			zap.Int("retry", i+1),
			zap.Duration("delay", retryDelay),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("не удалось подключиться к RabbitMQ после %d попыток: %w", maxRetries, err)
}
