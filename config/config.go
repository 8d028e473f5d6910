package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr   string        `envconfig:"HTTP_ADDR"   default:":8080"`
	GrpcAddr   string        `envconfig:"GRPC_ADDR"`
	GinMode    string        `envconfig:"GIN_MODE"    default:"release"`
	APIURL     string        `envconfig:"API_URL"     default:"http://localhost:4000/api"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	LogLevel   string        `envconfig:"LOG_LEVEL"   default:"info"`
	LogFile    string        `envconfig:"LOG_FILE"`
	ImagesDir  string        `envconfig:"IMAGES_DIR"  default:"./images"`

	// bolt, redis, postgres or memory
	StoreDriver   string `envconfig:"STORE_DRIVER"   default:"bolt"`
	StorePath     string `envconfig:"STORE_PATH"     default:"storefront.db"`
	RedisAddr     string `envconfig:"REDIS_ADDR"     default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"       default:"0"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	CatalogRefreshCron string  `envconfig:"CATALOG_REFRESH_CRON" default:"@every 5m"`
	CheckoutCurrency   string  `envconfig:"CHECKOUT_CURRENCY"    default:"COP"`
	SearchRatePerSec   float64 `envconfig:"SEARCH_RATE_PER_SEC"  default:"5"`
	SearchBurst        int     `envconfig:"SEARCH_BURST"         default:"10"`

	StoreInfo
}

// StoreInfo is the contact block rendered in every page footer.
type StoreInfo struct {
	Name     string `envconfig:"STORE_NAME"     default:"MR SmartService"`
	Address  string `envconfig:"STORE_ADDRESS"  default:"Cra. 31 #37-32, Local 42, C.C. Los Centauros"`
	Phone    string `envconfig:"STORE_PHONE"    default:"+57 321 614 5781"`
	Email    string `envconfig:"STORE_EMAIL"    default:"aaronmotta5@gmail.com"`
	WhatsApp string `envconfig:"STORE_WHATSAPP" default:"573216145781"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := envconfig.Process("", &config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config.APIURL = strings.TrimRight(config.APIURL, "/")

		logger.Infof("Configuration loaded: HTTP Addr=%s, API URL=%s, Store Driver=%s, LogLevel=%s",
			config.HTTPAddr, config.APIURL, config.StoreDriver, config.LogLevel)
		if config.StoreDriver == "postgres" && config.DatabaseURL == "" {
			logger.Fatal("Configuration error: DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	})
	return &config
}

// APIOrigin is the backend base URL without the trailing /api segment.
// Uploaded images are served relative to it.
func (c *Config) APIOrigin() string {
	return strings.TrimSuffix(c.APIURL, "/api")
}
