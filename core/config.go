package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	PomodoroConfig struct {
		FocusDuration time.Duration
		BreakDuration time.Duration
	}

	LeaderboardConfig struct {
		PointsPerAssignment int
		PointsPerStudyHour  int
	}

	NotificationConfig struct {
		Transport        string // direct | nats
		NATSURL          string
		Subject          string
		QueueGroup       string
		ReminderInterval time.Duration
		ReminderWindow   time.Duration
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server       ServerConfig
		Database     DatabaseConfig
		Pomodoro     PomodoroConfig
		Leaderboard  LeaderboardConfig
		Notification NotificationConfig
	}
)

// Address returns the database "host:port".
func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values come from defaults, then config/.env.<env> if present, then the environment
// (keys prefixed with the ENV name, eg. PROD_DATABASE_HOST).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := fromViper(v)
	conf.Env = env
	return conf
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Build:           v.GetString("build"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("appName"),
			Address: v.GetString("defaultFromEmail"),
		},
		SendgridApiKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Address:                   v.GetString("server.address"),
			DebugHost:                 v.GetString("server.debugHost"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Pomodoro: PomodoroConfig{
			FocusDuration: v.GetDuration("pomodoro.focusDuration"),
			BreakDuration: v.GetDuration("pomodoro.breakDuration"),
		},
		Leaderboard: LeaderboardConfig{
			PointsPerAssignment: v.GetInt("leaderboard.pointsPerAssignment"),
			PointsPerStudyHour:  v.GetInt("leaderboard.pointsPerStudyHour"),
		},
		Notification: NotificationConfig{
			Transport:        v.GetString("notification.transport"),
			NATSURL:          v.GetString("notification.natsURL"),
			Subject:          v.GetString("notification.subject"),
			QueueGroup:       v.GetString("notification.queueGroup"),
			ReminderInterval: v.GetDuration("notification.reminderInterval"),
			ReminderWindow:   v.GetDuration("notification.reminderWindow"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "EduFlow")
	v.SetDefault("secretKey", "x8g!2kq)h7w$+r1=zt&uoe(p4n)#*c9(#vd3f^$bam5lyq")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "eduflow")
	v.SetDefault("database.user", "eduflow")
	v.SetDefault("database.password", "eduflow")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("pomodoro.focusDuration", 25*time.Minute)
	v.SetDefault("pomodoro.breakDuration", 5*time.Minute)

	v.SetDefault("leaderboard.pointsPerAssignment", 10)
	v.SetDefault("leaderboard.pointsPerStudyHour", 5)

	v.SetDefault("notification.transport", "direct")
	v.SetDefault("notification.natsURL", "nats://127.0.0.1:4222")
	v.SetDefault("notification.subject", "eduflow.notifications")
	v.SetDefault("notification.queueGroup", "notifier")
	v.SetDefault("notification.reminderInterval", time.Hour)
	v.SetDefault("notification.reminderWindow", 24*time.Hour)
}

// NewTestConfig returns a Config suitable for tests; no environment lookup.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	v.Set("testMode", true)

	conf := fromViper(v)
	conf.Env = "TEST"
	conf.SecretKey = "secret"
	return conf
}
