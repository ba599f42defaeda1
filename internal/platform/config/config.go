package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// 環境変数による上書き。秘密情報をファイルに置かずに済むようにする。
const (
	EnvDatabaseHost     = "HR_DATABASE_HOST"
	EnvDatabasePassword = "HR_DATABASE_PASSWORD"
	EnvLogLevel         = "HR_LOG_LEVEL"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Logging      LoggingConfig      `yaml:"logging"`
	Notification NotificationConfig `yaml:"notification"`
	Attendance   AttendanceConfig   `yaml:"attendance"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
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
	ConnectAttempts    uint          `yaml:"connect_attempts"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnectDelay       time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	ConnectDelayRaw    string        `yaml:"connect_delay"`
}

// LoggingConfig はログ出力の設定です。
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NotificationConfig は通知配信の設定です。
type NotificationConfig struct {
	Async       bool          `yaml:"async"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"-"`
	TimeoutRaw  string        `yaml:"timeout"`
}

// AttendanceConfig は勤怠打刻の設定です。
type AttendanceConfig struct {
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDatabaseHost); ok && v != "" {
		c.Database.Host = v
	}
	if v, ok := lookup(EnvDatabasePassword); ok && v != "" {
		c.Database.Password = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Logging.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Notification.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Attendance.validateAndNormalize(); err != nil {
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
	if d.ConnectAttempts == 0 {
		d.ConnectAttempts = 1
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

	delay, err := parseDurationAllowEmpty(d.ConnectDelayRaw)
	if err != nil {
		return fmt.Errorf("config: database.connect_delay: %w", err)
	}
	if delay == 0 {
		delay = time.Second
	}
	d.ConnectDelay = delay

	return nil
}

func (l *LoggingConfig) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("config: logging.format must be json or console, got %q", l.Format)
	}
	return nil
}

func (n *NotificationConfig) validateAndNormalize() error {
	if n.Concurrency < 0 {
		return fmt.Errorf("config: notification.concurrency must not be negative")
	}
	if n.Concurrency == 0 {
		n.Concurrency = 4
	}
	timeout, err := parseDurationAllowEmpty(n.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: notification.timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	n.Timeout = timeout
	return nil
}

func (a *AttendanceConfig) validateAndNormalize() error {
	if a.Timezone == "" {
		a.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return fmt.Errorf("config: attendance.timezone: %w", err)
	}
	a.Location = loc
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

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
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
