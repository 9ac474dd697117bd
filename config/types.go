package config

type AppConfig struct {
	DBDriver    string            `yaml:"db_driver" env:"STATUSPULSE_DB_DRIVER" env-default:"sqlite"`
	DBURL       string            `yaml:"db_url" env:"STATUSPULSE_DB_URL" env-default:"data/statuspulse.db"`
	LogDir      string            `yaml:"log_dir" env:"STATUSPULSE_LOG_DIR"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Retention   RetentionConfig   `yaml:"retention"`
}

type SchedulerConfig struct {
	IntervalSeconds     int `yaml:"interval_seconds" env:"STATUSPULSE_SCHEDULER_INTERVAL_SECONDS" env-default:"60"`
	MaxConcurrentProbes int `yaml:"max_concurrent_probes" env:"STATUSPULSE_SCHEDULER_MAX_CONCURRENT_PROBES" env-default:"20"`
}

type AggregationConfig struct {
	CronSpec string `yaml:"cron_spec" env:"STATUSPULSE_AGGREGATION_CRON" env-default:"0 * * * *"`
}

type RetentionConfig struct {
	CronSpec string `yaml:"cron_spec" env:"STATUSPULSE_RETENTION_CRON" env-default:"30 3 * * *"`
	Days     int    `yaml:"days" env:"STATUSPULSE_RETENTION_DAYS" env-default:"90"`
}
