package config

type PushConfig struct {
	Provider string      `yaml:"provider"`
	FCM      *FCMConfig  `yaml:"fcm"`
	APNS     *APNSConfig `yaml:"apns"`
}

type FCMConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type APNSConfig struct {
	KeyFile string `yaml:"key_file"`
	KeyID   string `yaml:"key_id"`
	TeamID  string `yaml:"team_id"`
	Topic   string `yaml:"topic"`
	Sandbox bool   `yaml:"sandbox"`
}

func loadPushConfig() *PushConfig {
	return &PushConfig{
		Provider: getEnv("PUSH_PROVIDER", "fcm"),
		FCM: &FCMConfig{
			CredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),
		},
		APNS: &APNSConfig{
			KeyFile: getEnv("APNS_KEY_FILE", ""),
			KeyID:   getEnv("APNS_KEY_ID", ""),
			TeamID:  getEnv("APNS_TEAM_ID", ""),
			Topic:   getEnv("APNS_TOPIC", "com.lifeline.app"),
			Sandbox: getEnvAsBool("APNS_SANDBOX", true),
		},
	}
}
