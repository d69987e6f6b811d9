package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 秘密情報を上書きする環境変数です。
const (
	EnvDatabasePassword = "DATABASE_PASSWORD"
	EnvTelnyxAPIKey     = "TELNYX_API_KEY"
	EnvTelnyxPhone      = "TELNYX_PHONE_NUMBER"
	EnvRedisPassword    = "REDIS_PASSWORD"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	SMS      SMSConfig      `yaml:"sms"`
	PDF      PDFConfig      `yaml:"pdf"`
	Zipcode  ZipcodeConfig  `yaml:"zipcode"`
	Workflow WorkflowConfig `yaml:"workflow"`
}

// ServerConfig は gRPC と HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	HTTPAddr           string        `yaml:"http_addr"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// SMSConfig は Telnyx による SMS 送信の設定です。APIKey が空なら送信しません。
type SMSConfig struct {
	APIKey     string        `yaml:"api_key"`
	FromNumber string        `yaml:"from_number"`
	BaseURL    string        `yaml:"base_url"`
	HRContact  string        `yaml:"hr_contact"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

// Enabled は送信に必要な設定がそろっているかを返します。
func (s SMSConfig) Enabled() bool {
	return s.APIKey != "" && s.FromNumber != ""
}

// PDFConfig は承認書類の生成に関する設定です。TemplatePath が空なら生成しません。
type PDFConfig struct {
	TemplatePath  string             `yaml:"template_path"`
	OutputDir     string             `yaml:"output_dir"`
	PublicBaseURL string             `yaml:"public_base_url"`
	LockFields    bool               `yaml:"lock_fields"`
	Organization  OrganizationConfig `yaml:"organization"`
}

// Enabled は書類生成が有効かどうかを返します。
func (p PDFConfig) Enabled() bool {
	return p.TemplatePath != ""
}

// OrganizationConfig は雇用主欄に記載する組織情報です。
type OrganizationConfig struct {
	Name                string `yaml:"name"`
	Address             string `yaml:"address"`
	City                string `yaml:"city"`
	State               string `yaml:"state"`
	ZipCode             string `yaml:"zip_code"`
	RepresentativeName  string `yaml:"representative_name"`
	RepresentativeTitle string `yaml:"representative_title"`
}

// ZipcodeConfig は郵便番号検索の設定です。
type ZipcodeConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig は検索結果キャッシュの設定です。Addr が空ならキャッシュしません。
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"-"`
	TTLRaw   string        `yaml:"ttl"`
}

// WorkflowConfig は確認ワークフローの設定です。
type WorkflowConfig struct {
	AllowStatusOverride bool `yaml:"allow_status_override"`
}

// LoadDotEnv は .env ファイルを環境変数に読み込みます。ファイルがなければ何もしません。
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load は指定されたパスから設定ファイルを読み込みます。
// 秘密情報は環境変数が設定されていればそちらを優先します。
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnv(getenv)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.Database.Password, EnvDatabasePassword)
	override(&c.SMS.APIKey, EnvTelnyxAPIKey)
	override(&c.SMS.FromNumber, EnvTelnyxPhone)
	override(&c.Zipcode.Redis.Password, EnvRedisPassword)
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	shutdown, err := parseDurationAllowEmpty(c.Server.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if shutdown == 0 {
		shutdown = 10 * time.Second
	}
	c.Server.ShutdownTimeout = shutdown

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.SMS.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.PDF.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Zipcode.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "":
		l.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is not supported", l.Level)
	}
	return nil
}

func (s *SMSConfig) validateAndNormalize() error {
	timeout, err := parseDurationAllowEmpty(s.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: sms.timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	s.Timeout = timeout
	return nil
}

func (p *PDFConfig) validateAndNormalize() error {
	if !p.Enabled() {
		return nil
	}
	if p.OutputDir == "" {
		p.OutputDir = "var/artifacts"
	}
	if p.PublicBaseURL != "" {
		u, err := url.Parse(p.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: pdf.public_base_url must be an absolute URL")
		}
		p.PublicBaseURL = strings.TrimRight(p.PublicBaseURL, "/")
	}
	return nil
}

func (z *ZipcodeConfig) validateAndNormalize() error {
	timeout, err := parseDurationAllowEmpty(z.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: zipcode.timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	z.Timeout = timeout

	ttl, err := parseDurationAllowEmpty(z.Redis.TTLRaw)
	if err != nil {
		return fmt.Errorf("config: zipcode.redis.ttl: %w", err)
	}
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	z.Redis.TTL = ttl

	if z.Redis.DB < 0 {
		return fmt.Errorf("config: zipcode.redis.db must not be negative")
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープします。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
