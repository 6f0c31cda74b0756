package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type PgConf struct {
	Host    string `toml:"host"`
	Port    string `toml:"port"`
	User    string `toml:"user"`
	Db      string `toml:"db"`
	SslMode string `toml:"sslmode"`

	// Password is used as is when set, otherwise it is read from the
	// AWS Secrets Manager secret named PasswordSecret.
	Password       string `toml:"password"`
	PasswordSecret string `toml:"password_secret"`
}

func (pg PgConf) ConnString(ctx context.Context, region string) (string, error) {
	pw := pg.Password
	if pw == "" && pg.PasswordSecret != "" {
		secretValue, err := getSecretFromAWS(ctx, region, pg.PasswordSecret)
		if err != nil {
			return "", fmt.Errorf("failed to get postgres password from AWS: %w", err)
		}
		var secret struct {
			Password string `json:"password"`
		}
		if err := json.Unmarshal([]byte(secretValue), &secret); err != nil {
			return "", fmt.Errorf("failed to parse postgres password secret: %w", err)
		}
		pw = secret.Password
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pw, pg.Db, pg.SslMode), nil
}

func getSecretFromAWS(ctx context.Context, region string, secretName string) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return "", err
	}
	svc := secretsmanager.NewFromConfig(cfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := svc.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretName)
	}
	return *result.SecretString, nil
}
