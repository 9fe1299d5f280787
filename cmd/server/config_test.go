package main

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"wordmask/pkg/censor"
)

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	exitCode := m.Run()
	os.Exit(exitCode)
}

func TestConfig_decode(t *testing.T) {
	var cfg Config
	if _, err := toml.DecodeFile("config.toml", &cfg); err != nil {
		t.Fatalf("failed to decode config.toml: %v", err)
	}

	if cfg.DictSource != "file" || cfg.HTTPAddr != ":8055" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if d, err := cfg.reloadInterval(); err != nil || d != 5*time.Minute {
		t.Errorf("want reload interval 5m, got %v (err %v)", d, err)
	}
}

func TestConfig_censorOptions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		text    string
		want    string
		wantErr bool
	}{
		{"defaults", Config{}, "T,M,D!", "*****!", false},
		{"placeholder", Config{Placeholder: "#"}, "TMD", "###", false},
		{"noise", Config{Placeholder: "#", Noise: "~"}, "T~M~D T,M,D", "##### T,M,D", false},
		{"multi-char placeholder", Config{Placeholder: "ab"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.cfg.censorOptions()
			if (err != nil) != tt.wantErr {
				t.Fatalf("want error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}

			c := censor.New(opts...)
			c.Load([]string{"TMD"})
			if got := c.Mask(tt.text); got != tt.want {
				t.Errorf("Mask(%q) = %q; want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestConfig_reloadInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30s", 30 * time.Second, false},
		{"soon", 0, true},
		{"-1m", 0, true},
	}

	for _, tt := range tests {
		cfg := Config{ReloadInterval: tt.in}
		got, err := cfg.reloadInterval()
		if (err != nil) != tt.wantErr {
			t.Errorf("reloadInterval(%q) error = %v; want error %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("reloadInterval(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantDB   bool
		wantErr  bool
	}{
		{"default file", Config{DictPath: "words.txt"}, "file:words.txt", false, false},
		{"json", Config{DictSource: "json", DictPath: "words.json"}, "json:words.json", false, false},
		{"http", Config{DictSource: "HTTP", DictURL: "http://dict.example.com/words.txt"}, "http://dict.example.com/words.txt", false, false},
		{"http without url", Config{DictSource: "http"}, "", false, true},
		{"memory", Config{DictSource: "memory", DictPath: "words.txt"}, "memory", true, false},
		{"unknown", Config{DictSource: "redis"}, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be, err := openBackend(ctx, &tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("want error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			defer be.close()

			if be.name != tt.wantName {
				t.Errorf("want name %q, got %q", tt.wantName, be.name)
			}
			if (be.db != nil) != tt.wantDB {
				t.Errorf("want storage %v, got %v", tt.wantDB, be.db != nil)
			}
		})
	}
}

func TestOpenBackend_memorySeeded(t *testing.T) {
	ctx := context.Background()

	be, err := openBackend(ctx, &Config{DictSource: "memory", DictPath: "words.txt"})
	if err != nil {
		t.Fatalf("openBackend() error = %v", err)
	}
	defer be.close()

	got, err := be.src.Words(ctx)
	if err != nil {
		t.Fatalf("Words() error = %v", err)
	}
	want := []string{"TMD", "白日梦", "白痴不白痴", "白痴是你"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want words %q, got %q", want, got)
	}
}
