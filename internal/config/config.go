// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	PublicBaseURL           string `yaml:"public_base_url"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	AMQPAddress             string `yaml:"amqp_address"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	DRMUpstream             `yaml:"drm_upstream"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// DRMUpstream структура с адресами лицензионных серверов DRM-вендора
// и сервисным ключом для обращения к ним.
type DRMUpstream struct {
	WidevineLicenseURL  string        `yaml:"widevine_license_url"`
	PlayReadyLicenseURL string        `yaml:"playready_license_url"`
	FairPlayLicenseURL  string        `yaml:"fairplay_license_url"`
	FairPlayCertURL     string        `yaml:"fairplay_cert_url"`
	VendorAPIKey        string        `yaml:"vendor_api_key"`
	TimeoutUpstream     time.Duration `yaml:"timeout_upstream"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"PublicBaseURL: %s\n"+
			"StorageConnectionString: %s\n"+
			"AMQPAddress: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"  CacheTTL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"DRMUpstream:\n"+
			"  WidevineLicenseURL: %s\n"+
			"  PlayReadyLicenseURL: %s\n"+
			"  FairPlayLicenseURL: %s\n"+
			"  FairPlayCertURL: %s\n"+
			"  TimeoutUpstream: %s\n",
		c.Env,
		c.PublicBaseURL,
		c.StorageConnectionString,
		c.AMQPAddress,
		c.AddressRedis,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.TimeoutRedis,
		c.CacheTTL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.WidevineLicenseURL,
		c.PlayReadyLicenseURL,
		c.FairPlayLicenseURL,
		c.FairPlayCertURL,
		c.TimeoutUpstream,
	)
}
