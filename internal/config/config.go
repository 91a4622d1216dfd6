package config

import (
	"fmt"
	"log"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	RabbitMQ          RabbitMQConfig
	Firestore         FirestoreConfig
	OneSignal         OneSignalConfig
	Log               LogConfig
	MessageQueueName  string `yaml:"message_queue_name" env:"MESSAGE_QUEUE_NAME" env-default:"chat_message_events"`
	WorkerConcurrency int    `yaml:"worker_concurrency" env:"WORKER_CONCURRENCY" env-default:"10"`
	HealthCheckPort   string `yaml:"health_check_port" env:"HEALTH_CHECK_PORT" env-default:"8089"`
}

type RabbitMQConfig struct {
	URI string `yaml:"uri" env:"RABBITMQ_URI" env-required:"true"`
}

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id" env:"FIRESTORE_PROJECT_ID"`             // Если пусто, используются заглушки хранилищ
	CredentialsPath string `yaml:"credentials_path" env:"FIRESTORE_CREDENTIALS_PATH"` // Путь к файлу ключа сервис-аккаунта
}

type OneSignalConfig struct {
	AppID string `yaml:"app_id" env:"ONESIGNAL_APP_ID" env-default:"e031531f-e118-4f0b-b43d-22a423cea978"`
	// REST API Key приходит только из окружения (секрет), в yaml его не кладем.
	RestAPIKey string `env:"ONESIGNAL_REST_API_KEY"`
	APIURL     string `yaml:"api_url" env:"ONESIGNAL_API_URL" env-default:"https://api.onesignal.com/notifications"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
}

func LoadConfig() (*Config, error) {
	configPath := "config.yml" // Путь по умолчанию

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v. Попытка чтения из переменных окружения.", configPath, err)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
		}
	}

	// Секрет в лог не пишем — только факт его наличия.
	log.Printf("Конфигурация успешно загружена. Queue: %s, OneSignal App ID: %s, ключ загружен: %t",
		cfg.MessageQueueName, cfg.OneSignal.AppID, cfg.OneSignal.RestAPIKey != "")

	return &cfg, nil
}
