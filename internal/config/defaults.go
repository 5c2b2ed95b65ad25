package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Auth: AuthConfig{
			JWTSecret:     "your-secret-key-change-in-production",
			TokenTTLHours: 24,
		},
		Database: DatabaseConfig{
			Path:     "~/.fieldbot/fieldbot.db",
			AutoSeed: true,
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				Enabled:   false,
				ParseMode: "Markdown",
			},
		},
		Events: EventsConfig{
			Enabled:  false,
			Exchange: "fieldbot.events",
			Producer: "fieldbot",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}
