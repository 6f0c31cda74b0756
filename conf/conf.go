package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/soltracker/solpath"
)

const DefaultConfigPath = "soltracker.toml"

type Config struct {
	Root    string   `toml:"root" validate:"required"`
	Pattern string   `toml:"pattern" validate:"required"`
	Workers int      `toml:"workers" validate:"min=1"`
	Log     LogConf  `toml:"log"`
	Http    HttpConf `toml:"http"`
	Sink    SinkConf `toml:"sink"`
}

type LogConf struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

type HttpConf struct {
	Addr           string   `toml:"addr"` // empty disables the status server
	AllowedOrigins []string `toml:"allowed_origins"`
}

type SinkConf struct {
	// Kinds lists the sinks solutions are forwarded to:
	// log, sqs, s3, dynamodb, postgres, http.
	Kinds  []string `toml:"kinds" validate:"min=1,dive,oneof=log sqs s3 dynamodb postgres http"`
	Region string   `toml:"region"`

	SqsQueueUrl string `toml:"sqs_queue_url"`
	S3Bucket    string `toml:"s3_bucket"`
	DdbTable    string `toml:"dynamodb_table"`

	DistributorUrl    string `toml:"distributor_url"`
	DistributorJwtKey string `toml:"distributor_jwt_key"`

	Postgres PgConf `toml:"postgres"`
}

func Default() Config {
	return Config{
		Root:    "",
		Pattern: solpath.DefaultPattern,
		Workers: 1,
		Log: LogConf{
			Level:  "info",
			Format: "text",
		},
		Http: HttpConf{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Sink: SinkConf{
			Kinds:  []string{"log"},
			Region: "eu-central-1",
			Postgres: PgConf{
				Host:    "localhost",
				Port:    "5432",
				SslMode: "disable",
			},
		},
	}
}

// Load reads the TOML file at path on top of the defaults and then applies
// environment overrides. A missing file is only an error when it is not
// the default path.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("SOLTRACKER_ROOT", &cfg.Root)
	str("SOLTRACKER_PATTERN", &cfg.Pattern)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("HTTP_ADDR", &cfg.Http.Addr)
	str("AWS_REGION", &cfg.Sink.Region)
	str("SOLUTION_SQS_QUEUE_URL", &cfg.Sink.SqsQueueUrl)
	str("SOLUTION_S3_BUCKET", &cfg.Sink.S3Bucket)
	str("SOLUTION_DDB_TABLE", &cfg.Sink.DdbTable)
	str("DISTRIBUTOR_URL", &cfg.Sink.DistributorUrl)
	str("DISTRIBUTOR_JWT_KEY", &cfg.Sink.DistributorJwtKey)
	str("POSTGRES_HOST", &cfg.Sink.Postgres.Host)
	str("POSTGRES_PORT", &cfg.Sink.Postgres.Port)
	str("POSTGRES_USER", &cfg.Sink.Postgres.User)
	str("POSTGRES_DB", &cfg.Sink.Postgres.Db)
	str("POSTGRES_SSLMODE", &cfg.Sink.Postgres.SslMode)
	str("POSTGRES_PW", &cfg.Sink.Postgres.Password)
	str("POSTGRES_PASSWORD_SECRET_NAME", &cfg.Sink.Postgres.PasswordSecret)

	if v, ok := lookup("SOLTRACKER_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SOLTRACKER_WORKERS is not a number: %w", err)
		}
		cfg.Workers = n
	}
	if v, ok := lookup("SOLTRACKER_SINK"); ok && v != "" {
		cfg.Sink.Kinds = splitList(v)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the fields the scanner and the sink factory rely on.
// Settings of individual sinks are checked when the sinks are built.
func (cfg Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
