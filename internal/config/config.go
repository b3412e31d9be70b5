// Package config assembles application settings from, in increasing
// priority: built-in defaults, an optional JSON config file (pointed to by
// the CONFIG environment variable or the -c flag), environment variables,
// and command-line flags. The assembled configuration is validated before
// being handed to the application.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr                   string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	LogLevel                  string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	DBFileName                string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	DatabaseDSN               string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBConnectionTimeout       time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"-"`
	MigrationsDir             string        `env:"MIGRATIONS_DIR" json:"migrations_dir"`
	AuthCookieName            string        `env:"AUTH_COOKIE_NAME" json:"auth_cookie_name" validate:"required"`
	AuthTokenSigningSecretKey string        `env:"AUTH_TOKEN_SIGNING_SECRET_KEY" json:"auth_token_signing_secret_key" validate:"required,base64url"`
	AuthTokenTTL              time.Duration `env:"AUTH_TOKEN_TTL" json:"-"`
	AuthProtectedResources    string        `env:"REQUIRE_AUTH_ON" json:"require_auth_on" validate:"authresources"`
	TrustedSubnet             string        `env:"TRUSTED_SUBNET" json:"trusted_subnet"`
}

var defaultConfig = Config{
	RunAddr:                   ":8080",
	LogLevel:                  "info",
	DBFileName:                "",
	DatabaseDSN:               "",
	DBConnectionTimeout:       10 * time.Second,
	MigrationsDir:             "cmd/clipnotes/migrations",
	AuthCookieName:            "clipnotes_auth",
	AuthTokenSigningSecretKey: "Y2xpcG5vdGVzLXNpZ25pbmcta2V5LWNoYW5nZS1tZQ==",
	AuthTokenTTL:              24 * time.Hour,
	AuthProtectedResources:    "clips,highlights",
	TrustedSubnet:             "",
}

// ProtectedResources parses the comma-separated AuthProtectedResources value
// into a lookup set. Unknown names are rejected by validation beforehand.
func (c *Config) ProtectedResources() map[string]bool {
	result := map[string]bool{}
	for _, resource := range strings.Split(c.AuthProtectedResources, ",") {
		resource = strings.TrimSpace(resource)
		if resource != "" {
			result[resource] = true
		}
	}

	return result
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func validateAuthResources(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()
	if value == "" {
		return true
	}

	allowedResources := map[string]bool{
		"clips":      true,
		"highlights": true,
	}
	for _, resource := range strings.Split(value, ",") {
		if !allowedResources[strings.TrimSpace(resource)] {
			return false
		}
	}

	return true
}

func validate(values *Config) error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("authresources", validateAuthResources)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}

func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.MigrationsDir == "" {
		values.MigrationsDir = defaults.MigrationsDir
	}
	if values.AuthCookieName == "" {
		values.AuthCookieName = defaults.AuthCookieName
	}
	if values.AuthTokenSigningSecretKey == "" {
		values.AuthTokenSigningSecretKey = defaults.AuthTokenSigningSecretKey
	}
	if values.AuthProtectedResources == "" {
		values.AuthProtectedResources = defaults.AuthProtectedResources
	}
	if values.DBConnectionTimeout == 0 {
		values.DBConnectionTimeout = defaults.DBConnectionTimeout
	}
	if values.AuthTokenTTL == 0 {
		values.AuthTokenTTL = defaults.AuthTokenTTL
	}
}

func applyJSONConfigFile(values *Config, configFileName string) error {
	if configFileName == "" {
		configFileName = os.Getenv("CONFIG")
	}
	if configFileName == "" {
		return nil
	}

	data, err := os.ReadFile(configFileName)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, values)
}

func overlayNonZero(values *Config, overlay Config) {
	if overlay.RunAddr != "" {
		values.RunAddr = overlay.RunAddr
	}
	if overlay.LogLevel != "" {
		values.LogLevel = overlay.LogLevel
	}
	if overlay.DBFileName != "" {
		values.DBFileName = overlay.DBFileName
	}
	if overlay.DatabaseDSN != "" {
		values.DatabaseDSN = overlay.DatabaseDSN
	}
	if overlay.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = overlay.DBConnectionTimeout
	}
	if overlay.MigrationsDir != "" {
		values.MigrationsDir = overlay.MigrationsDir
	}
	if overlay.AuthCookieName != "" {
		values.AuthCookieName = overlay.AuthCookieName
	}
	if overlay.AuthTokenSigningSecretKey != "" {
		values.AuthTokenSigningSecretKey = overlay.AuthTokenSigningSecretKey
	}
	if overlay.AuthTokenTTL != 0 {
		values.AuthTokenTTL = overlay.AuthTokenTTL
	}
	if overlay.AuthProtectedResources != "" {
		values.AuthProtectedResources = overlay.AuthProtectedResources
	}
	if overlay.TrustedSubnet != "" {
		values.TrustedSubnet = overlay.TrustedSubnet
	}
}

// InitOption configures the New constructor.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing; used by tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New assembles, validates and returns the application configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := Config{}
	applyDefaults(&values, defaultConfig)

	configFileName := ""
	if !options.disableFlagsParsing {
		flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
		flags.StringVar(&configFileName, "c", "", "path to a JSON config file")
		runAddr := flags.String("a", "", "address and port to run server")
		logLevel := flags.String("l", "", "logger level")
		dbFileName := flags.String("f", "", "JSON file name with database")
		databaseDSN := flags.String("d", "", "a string with the database connection details")
		trustedSubnet := flags.String("t", "", "trusted subnet in CIDR notation for the internal API")
		protectedResources := flags.String("p", "", "comma-separated resources behind the authorization gate")
		if err := flags.Parse(os.Args[1:]); err != nil {
			return nil, err
		}

		if err := applyJSONConfigFile(&values, configFileName); err != nil {
			return nil, err
		}

		var valuesFromEnv Config
		if err := env.Parse(&valuesFromEnv); err != nil {
			return nil, err
		}
		overlayNonZero(&values, valuesFromEnv)

		overlayNonZero(&values, Config{
			RunAddr:                *runAddr,
			LogLevel:               *logLevel,
			DBFileName:             *dbFileName,
			DatabaseDSN:            *databaseDSN,
			TrustedSubnet:          *trustedSubnet,
			AuthProtectedResources: *protectedResources,
		})
	} else {
		if err := applyJSONConfigFile(&values, configFileName); err != nil {
			return nil, err
		}

		var valuesFromEnv Config
		if err := env.Parse(&valuesFromEnv); err != nil {
			return nil, err
		}
		overlayNonZero(&values, valuesFromEnv)
	}

	if err := validate(&values); err != nil {
		return nil, err
	}

	return &values, nil
}
