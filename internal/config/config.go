package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	AppHost        string
	AppPort        int
	AllowedOrigins []string

	// Storage
	DataDir   string
	UploadDir string

	// Logging
	LogLevel  string
	LogFormat string

	// Shared outbound HTTP
	HTTPTimeout time.Duration

	// Lightcast
	LightcastTokenURL     string
	LightcastSkillsURL    string
	LightcastClientID     string
	LightcastClientSecret string
	LightcastScope        string
	LightcastDelay        time.Duration

	// Coursera
	CourseraBaseURL    string
	CourseraUserAgent  string
	CourseraMaxCourses int
	CourseraDelay      time.Duration

	// SFTP
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
	SFTPKnownHosts            string
}

// Load reads the environment, optionally seeded from a .env file.
func Load() Config {
	// a missing .env is fine
	_ = godotenv.Load()

	return Config{
		AppHost:        getenv("APP_HOST", "0.0.0.0"),
		AppPort:        getenvInt("APP_PORT", 8000),
		AllowedOrigins: getenvList("FRONTEND_ORIGINS"),

		DataDir:   getenv("DATA_DIR", "."),
		UploadDir: getenv("UPLOAD_DIR", "uploads"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),

		HTTPTimeout: getenvDuration("HTTP_CLIENT_TIMEOUT", 15*time.Second),

		LightcastTokenURL:     getenv("LIGHTCAST_TOKEN_URL", "https://auth.emsicloud.com/connect/token"),
		LightcastSkillsURL:    getenv("LIGHTCAST_SKILLS_URL", "https://emsiservices.com/skills/versions/latest/skills"),
		LightcastClientID:     os.Getenv("LIGHTCAST_CLIENT_ID"),
		LightcastClientSecret: os.Getenv("LIGHTCAST_CLIENT_SECRET"),
		LightcastScope:        getenv("LIGHTCAST_SCOPE", "emsi_open"),
		LightcastDelay:        getenvDuration("LIGHTCAST_REQUEST_DELAY", 200*time.Millisecond),

		CourseraBaseURL:    getenv("COURSERA_BASE_URL", "https://www.coursera.org"),
		CourseraUserAgent:  getenv("COURSERA_USER_AGENT", "Mozilla/5.0"),
		CourseraMaxCourses: getenvInt("COURSERA_MAX_COURSES", 1),
		CourseraDelay:      getenvDuration("COURSERA_REQUEST_DELAY", time.Second),

		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOST_KEY", true),
		SFTPKnownHosts:            os.Getenv("SFTP_KNOWN_HOSTS"),
	}
}

// SkillStoreCSV is the primary employer-skill file.
func (c Config) SkillStoreCSV() string {
	return filepath.Join(c.DataDir, "normalized_skills.csv")
}

// SkillStoreXLSX mirrors SkillStoreCSV on every save.
func (c Config) SkillStoreXLSX() string {
	return filepath.Join(c.UploadDir, "normalized_skills.xlsx")
}

func (c Config) MappingXLSX() string {
	return filepath.Join(c.UploadDir, "coursera_mapped_skills.xlsx")
}

func (c Config) Addr() string {
	return c.AppHost + ":" + strconv.Itoa(c.AppPort)
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getenvDuration accepts Go durations ("1s", "200ms") or plain seconds ("0.2").
func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

func getenvList(k string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(k), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
