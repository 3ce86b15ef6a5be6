package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the application-level settings. Infrastructure clients
// (Postgres, Mongo, Redis) read their own environment variables.
type AppConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Storage StorageConfig `yaml:"storage"`
	Vertex  VertexConfig  `yaml:"vertex"`
	Scoring ScoringConfig `yaml:"scoring"`

	JobListTTL   time.Duration `yaml:"job_list_ttl"`
	ParseWorkers int           `yaml:"parse_workers"`
	ParseStream  string        `yaml:"parse_stream"`
	MaxUploadMB  int64         `yaml:"max_upload_mb"`
}

type StorageConfig struct {
	Backend  string `yaml:"backend"` // gcs|local
	Bucket   string `yaml:"bucket"`
	LocalDir string `yaml:"local_dir"`
}

type VertexConfig struct {
	ProjectID string `yaml:"project_id"`
	Location  string `yaml:"location"`
	Model     string `yaml:"model"`
}

// Enabled reports whether LLM feedback should be generated.
func (v VertexConfig) Enabled() bool { return v.ProjectID != "" }

type ScoringConfig struct {
	SentinelSkill  string `yaml:"sentinel_skill"`
	SentinelDegree string `yaml:"sentinel_degree"`
}

// LoadApp builds an AppConfig from the environment, then overlays the YAML
// file at path when path is non-empty.
func LoadApp(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "local"),
			Bucket:   os.Getenv("GCS_BUCKET"),
			LocalDir: getEnv("UPLOAD_DIR", "media"),
		},
		Vertex: VertexConfig{
			ProjectID: os.Getenv("VERTEX_PROJECT_ID"),
			Location:  getEnv("VERTEX_LOCATION", "us-central1"),
			Model:     os.Getenv("VERTEX_MODEL"),
		},
		Scoring: ScoringConfig{
			SentinelSkill:  getEnv("SCORING_SENTINEL_SKILL", "Python"),
			SentinelDegree: getEnv("SCORING_SENTINEL_DEGREE", "Bachelor's Degree"),
		},
		JobListTTL:   getDuration("JOB_LIST_TTL", 2*time.Minute),
		ParseWorkers: getInt("PARSE_WORKERS", 2),
		ParseStream:  getEnv("PARSE_STREAM", "resume:parse"),
		MaxUploadMB:  int64(getInt("MAX_UPLOAD_MB", 10)),
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
