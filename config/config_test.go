package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
		Storage: StorageConfig{Root: "/tmp/files"},
		Payroll: PayrollConfig{PostExpenses: true, ExpenseCategory: "nomina"},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty secret":     func(c *Config) { c.Auth.JWTSecret = "" },
		"short secret":     func(c *Config) { c.Auth.JWTSecret = "short" },
		"bad port":         func(c *Config) { c.Server.Port = 70000 },
		"no storage root":  func(c *Config) { c.Storage.Root = "" },
		"missing category": func(c *Config) { c.Payroll.ExpenseCategory = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OBRA_AUTH_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("OBRA_SERVER_PORT", "9090")
	t.Setenv("OBRA_PAYROLL_POST_EXPENSES", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret-0123456789", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Payroll.PostExpenses)
	assert.Equal(t, "nomina", cfg.Payroll.ExpenseCategory)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORS.AllowOrigins)
	assert.Contains(t, cfg.Server.CORS.ExposeHeaders, "Content-Disposition")
	assert.Equal(t, 12*time.Hour, cfg.Server.CORS.MaxAge)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC", c.DSN())
}
