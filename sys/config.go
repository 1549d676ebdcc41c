package sys

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token        string
	GuildID      string
	DatabasePath string
	OwnerIDs     []string
	Silent       bool

	// Violation tracking
	LedgerBackend  string
	RedisURL       string
	EscalationBase time.Duration
	EscalationCap  time.Duration
	EnforceTimeout time.Duration
	ViolationDecay time.Duration
	NotifyRate     int

	MetricsAddr string
}

const (
	LedgerSQLite = "sqlite"
	LedgerRedis  = "redis"
	LedgerMemory = "memory"
)

var GlobalConfig *Config

// LoadConfig initializes the configuration from environment variables.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		folder := "."
		if info, err := os.Stat("data"); err == nil && info.IsDir() {
			folder = "./data"
		}
		dbPath = filepath.Join(folder, GetProjectName()+".db")
	}

	silent, _ := strconv.ParseBool(os.Getenv("SILENT"))

	ownerIDsStr := os.Getenv("OWNER_IDS")
	var ownerIDs []string
	if ownerIDsStr != "" {
		ownerIDs = strings.Split(ownerIDsStr, ",")
		for i := range ownerIDs {
			ownerIDs[i] = strings.TrimSpace(ownerIDs[i])
		}
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("LEDGER_BACKEND")))
	if backend == "" {
		backend = LedgerSQLite
	}

	cfg := &Config{
		Token:         os.Getenv("DISCORD_TOKEN"),
		GuildID:       os.Getenv("GUILD_ID"),
		DatabasePath:  dbPath,
		OwnerIDs:      ownerIDs,
		Silent:        silent,
		LedgerBackend: backend,
		RedisURL:      os.Getenv("REDIS_URL"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
	}

	var err error
	if cfg.EscalationBase, err = envDuration("ESCALATION_BASE", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.EscalationCap, err = envDuration("ESCALATION_CAP", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.EnforceTimeout, err = envDuration("ENFORCE_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.ViolationDecay, err = envDuration("VIOLATION_DECAY", 0); err != nil {
		return nil, err
	}
	if cfg.NotifyRate, err = envInt("NOTIFY_RATE", 20); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	GlobalConfig = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf(MsgConfigMissingToken)
	}
	if c.GuildID != "" && (len(c.GuildID) < 17 || len(c.GuildID) > 20) {
		return fmt.Errorf("invalid GUILD_ID: must be a valid Snowflake")
	}
	switch c.LedgerBackend {
	case LedgerSQLite, LedgerMemory:
	case LedgerRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("LEDGER_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("invalid LEDGER_BACKEND %q: must be sqlite, redis or memory", c.LedgerBackend)
	}
	if c.EscalationBase <= 0 || c.EscalationCap <= 0 {
		return fmt.Errorf("ESCALATION_BASE and ESCALATION_CAP must be positive")
	}
	if c.EscalationCap < c.EscalationBase {
		return fmt.Errorf("ESCALATION_CAP (%s) is shorter than ESCALATION_BASE (%s)", c.EscalationCap, c.EscalationBase)
	}
	// Discord refuses timeouts longer than 28 days
	if c.EscalationCap > 28*24*time.Hour {
		return fmt.Errorf("ESCALATION_CAP must not exceed 28 days")
	}
	if c.EnforceTimeout <= 0 {
		return fmt.Errorf("ENFORCE_TIMEOUT must be positive")
	}
	if c.ViolationDecay < 0 {
		return fmt.Errorf("VIOLATION_DECAY must not be negative")
	}
	if c.NotifyRate < 0 {
		return fmt.Errorf("NOTIFY_RATE must not be negative")
	}
	return nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func GetProjectName() string {
	exePath, err := os.Executable()
	projectName := "bot"
	if err == nil {
		projectName = filepath.Base(exePath)
		projectName = strings.TrimSuffix(projectName, ".exe")

		if projectName == "main" || strings.HasPrefix(projectName, "go_build_") {
			if modData, err := os.ReadFile("go.mod"); err == nil {
				lines := strings.Split(string(modData), "\n")
				if len(lines) > 0 && strings.HasPrefix(lines[0], "module ") {
					parts := strings.Split(lines[0], "/")
					projectName = strings.TrimSpace(parts[len(parts)-1])
				}
			}
		}
	}
	return projectName
}
