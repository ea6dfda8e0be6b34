package config

import "time"

type WorkerConfig struct {
	Enabled            bool          `yaml:"enabled"`
	OutboxPollInterval time.Duration `yaml:"outbox_poll_interval"`
	OutboxBatchSize    int           `yaml:"outbox_batch_size"`
	OutboxMaxAttempts  int           `yaml:"outbox_max_attempts"`
	ReminderInterval   time.Duration `yaml:"reminder_interval"`
	ReminderLeadTime   time.Duration `yaml:"reminder_lead_time"`
}

func loadWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		Enabled:            getEnvAsBool("WORKER_ENABLED", true),
		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 10*time.Second),
		OutboxBatchSize:    getEnvAsInt("OUTBOX_BATCH_SIZE", 25),
		OutboxMaxAttempts:  getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 8),
		ReminderInterval:   getEnvAsDuration("REMINDER_INTERVAL", time.Hour),
		ReminderLeadTime:   getEnvAsDuration("REMINDER_LEAD_TIME", 7*24*time.Hour),
	}
}
