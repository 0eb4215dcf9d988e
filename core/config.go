package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MaxUploadAccounts is the highest numbered upload account suffix read from the environment (_2 .. _10).
const MaxUploadAccounts = 10

type (
	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		Build        string
		AppName      string
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Cart     CartConfig
		Catalog  CatalogConfig
		Upload   UploadConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	CartConfig struct {
		Store         string // memory | redis | sqlite
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		SQLitePath    string
		CookieName    string
	}

	CatalogConfig struct {
		Driver               string // memory | postgres | firestore
		FirestoreProject     string
		FirestoreCredentials string // service account file; ADC when empty
	}

	UploadConfig struct {
		Accounts    []UploadAccount
		BaseURL     string
		MaxFileSize int64
		Timeout     time.Duration
	}

	// UploadAccount holds the credentials for one image host account.
	UploadAccount struct {
		CloudName    string
		UploadPreset string
	}
)

func (dbc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dbc.Host, dbc.Port)
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "LAUTECH Market")
	v.SetDefault("secretKey", "h3#q!v9x8+2m$k4z@t7r=p1w^y6u(c0e)n5b&d_f-g")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "lautechmarket")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("cart.store", "memory")
	v.SetDefault("cart.redisAddr", "localhost:6379")
	v.SetDefault("cart.redisPassword", "")
	v.SetDefault("cart.redisDB", 0)
	v.SetDefault("cart.sqlitePath", "cart.db")
	v.SetDefault("cart.cookieName", "cart_session")

	v.SetDefault("catalog.driver", "memory")
	v.SetDefault("catalog.firestoreProject", "")
	v.SetDefault("catalog.firestoreCredentials", "")

	v.SetDefault("upload.baseURL", "https://api.cloudinary.com")
	v.SetDefault("upload.maxFileSize", 10<<20) // 10MB
	v.SetDefault("upload.timeout", 30*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Cart: CartConfig{
			Store:         strings.ToLower(v.GetString("cart.store")),
			RedisAddr:     v.GetString("cart.redisAddr"),
			RedisPassword: v.GetString("cart.redisPassword"),
			RedisDB:       v.GetInt("cart.redisDB"),
			SQLitePath:    v.GetString("cart.sqlitePath"),
			CookieName:    v.GetString("cart.cookieName"),
		},
		Catalog: CatalogConfig{
			Driver:               strings.ToLower(v.GetString("catalog.driver")),
			FirestoreProject:     v.GetString("catalog.firestoreProject"),
			FirestoreCredentials: v.GetString("catalog.firestoreCredentials"),
		},
		Upload: UploadConfig{
			Accounts:    uploadAccounts(v),
			BaseURL:     v.GetString("upload.baseURL"),
			MaxFileSize: v.GetInt64("upload.maxFileSize"),
			Timeout:     v.GetDuration("upload.timeout"),
		},
	}
}

// uploadAccounts reads the primary account (no suffix) then the numbered ones in ascending order.
// accounts missing either the cloud name or the preset are skipped.
func uploadAccounts(v *viper.Viper) []UploadAccount {
	accounts := make([]UploadAccount, 0, MaxUploadAccounts)
	add := func(cloud, preset string) {
		cloud, preset = CleanString(cloud), CleanString(preset)
		if cloud != "" && preset != "" {
			accounts = append(accounts, UploadAccount{CloudName: cloud, UploadPreset: preset})
		}
	}

	add(v.GetString("cloudinary_cloud_name"), v.GetString("cloudinary_upload_preset"))
	for i := 2; i <= MaxUploadAccounts; i++ {
		add(
			v.GetString(fmt.Sprintf("cloudinary_cloud_name_%d", i)),
			v.GetString(fmt.Sprintf("cloudinary_upload_preset_%d", i)),
		)
	}
	return accounts
}
