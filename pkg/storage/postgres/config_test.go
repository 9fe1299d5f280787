package postgres

import (
	"strings"
	"testing"
)

func TestConfig_isValid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{
			name: "valid config",
			cfg: Config{
				User:     "user",
				Password: "password",
				Host:     "localhost",
				Port:     "5432",
				DBName:   "test",
			},
			want: true,
		},
		{
			name: "empty config",
			cfg:  Config{},
			want: false,
		},
		{
			name: "config with empty DBName",
			cfg: Config{
				User:     "user",
				Password: "password",
				Host:     "localhost",
				Port:     "5432",
				DBName:   "",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsValid(); got != tt.want {
				t.Errorf("Config.isValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_ConString(t *testing.T) {
	cfg := Config{User: "u", Password: "p", Host: "db", Port: "5432", DBName: "words"}

	want := "postgres://u:p@db:5432/words"
	if got := cfg.ConString(); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestConfig_StringHidesPassword(t *testing.T) {
	cfg := Config{User: "u", Password: "secret", Host: "db", Port: "5432", DBName: "words"}

	got := cfg.String()
	if strings.Contains(got, "secret") {
		t.Errorf("want password hidden, got %s", got)
	}
	if !strings.Contains(got, "******") {
		t.Errorf("want password replaced by asterisks, got %s", got)
	}
	if cfg.Password != "secret" {
		t.Error("String() must not modify the config")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("POSTGRES_DB", "words")

	cfg := ConfigFromEnv()
	if !cfg.IsValid() {
		t.Errorf("want valid config from env, got %s", cfg)
	}
}
