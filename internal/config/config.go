package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
	UploadDir      string `mapstructure:"upload_dir"`
	BodyLimitMB    int    `mapstructure:"body_limit_mb"`
	JSONLimitMB    int    `mapstructure:"json_limit_mb"`
}

type MongoConf struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type AdminConf struct {
	Email          string `mapstructure:"email"`
	Password       string `mapstructure:"password"`
	SecondEmail    string `mapstructure:"second_email"`
	SecondPassword string `mapstructure:"second_password"`
}

type JWTConf struct {
	Secret  string `mapstructure:"secret"`
	TTLDays int    `mapstructure:"ttl_days"`
}

type CloudinaryConf struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type S3Conf struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
}

type StorageConf struct {
	// "cloudinary" (default) or "s3".
	Backend string `mapstructure:"backend"`
	// When true the pipeline issues best-effort deletes against the media
	// host for assets that uploaded before a later file failed. Off by
	// default: the leak is the documented behavior.
	CompensateOnFailure bool `mapstructure:"compensate_on_failure"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConf struct {
	GlobalLimit     int `mapstructure:"global_limit"`
	GlobalWindowMin int `mapstructure:"global_window_minutes"`
	LoginLimit      int `mapstructure:"login_limit"`
	LoginWindowMin  int `mapstructure:"login_window_minutes"`
}

type CORSConf struct {
	Origins string `mapstructure:"origins"`
}

type Config struct {
	App        AppConf        `mapstructure:"app"`
	Mongo      MongoConf      `mapstructure:"mongodb"`
	Admin      AdminConf      `mapstructure:"admin"`
	JWT        JWTConf        `mapstructure:"jwt"`
	Cloudinary CloudinaryConf `mapstructure:"cloudinary"`
	S3         S3Conf         `mapstructure:"s3"`
	Storage    StorageConf    `mapstructure:"storage"`
	Redis      RedisConf      `mapstructure:"redis"`
	RateLimit  RateLimitConf  `mapstructure:"rate_limit"`
	CORS       CORSConf       `mapstructure:"cors"`

	// derived
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
	GlobalWindow    time.Duration
	LoginWindow     time.Duration
}

// Load reads config.yaml and lets the original deployment's environment
// variables override secrets (MONGODB_URI, JWT_SECRET, ADMIN_EMAIL, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	for key, env := range map[string]string{
		"mongodb.uri":           "MONGODB_URI",
		"jwt.secret":            "JWT_SECRET",
		"admin.email":           "ADMIN_EMAIL",
		"admin.password":        "ADMIN_PASSWORD",
		"admin.second_email":    "ADMIN_EMAIL1",
		"admin.second_password": "ADMIN_PASSWORD1",
		"cloudinary.cloud_name": "CLOUDINARY_CLOUD_NAME",
		"cloudinary.api_key":    "CLOUDINARY_API_KEY",
		"cloudinary.api_secret": "CLOUDINARY_API_SECRET",
		"app.env":               "NODE_ENV",
		"app.port":              "PORT",
		"redis.addr":            "REDIS_ADDR",
	} {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.App.Port == 0 {
		cfg.App.Port = 4000
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 15
	}
	if cfg.App.UploadDir == "" {
		cfg.App.UploadDir = "uploads"
	}
	if cfg.App.BodyLimitMB == 0 {
		cfg.App.BodyLimitMB = 1024
	}
	if cfg.App.JSONLimitMB == 0 {
		cfg.App.JSONLimitMB = 10
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "Marketing"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "images"
	}
	if cfg.JWT.TTLDays == 0 {
		cfg.JWT.TTLDays = 7
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "cloudinary"
	}
	if cfg.RateLimit.GlobalLimit == 0 {
		cfg.RateLimit.GlobalLimit = 100
	}
	if cfg.RateLimit.GlobalWindowMin == 0 {
		cfg.RateLimit.GlobalWindowMin = 15
	}
	if cfg.RateLimit.LoginLimit == 0 {
		cfg.RateLimit.LoginLimit = 5
	}
	if cfg.RateLimit.LoginWindowMin == 0 {
		cfg.RateLimit.LoginWindowMin = 60
	}

	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	cfg.SessionTTL = time.Duration(cfg.JWT.TTLDays) * 24 * time.Hour
	cfg.GlobalWindow = time.Duration(cfg.RateLimit.GlobalWindowMin) * time.Minute
	cfg.LoginWindow = time.Duration(cfg.RateLimit.LoginWindowMin) * time.Minute

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	missing := []string{}
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGODB_URI")
	}
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Admin.Email == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if c.Admin.Password == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if c.Storage.Backend == "cloudinary" {
		if c.Cloudinary.CloudName == "" {
			missing = append(missing, "CLOUDINARY_CLOUD_NAME")
		}
		if c.Cloudinary.APIKey == "" {
			missing = append(missing, "CLOUDINARY_API_KEY")
		}
		if c.Cloudinary.APISecret == "" {
			missing = append(missing, "CLOUDINARY_API_SECRET")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Storage.Backend != "cloudinary" && c.Storage.Backend != "s3" {
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
