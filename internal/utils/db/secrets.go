package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// retrieveCredentials prefere as variáveis de ambiente; na ausência delas
// busca o segredo no AWS Secrets Manager.
func retrieveCredentials(secretID string) (string, string, error) {
	username := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	if username != "" && password != "" {
		return username, password, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return "", "", fmt.Errorf("erro ao carregar config AWS: %w", err)
	}
	client := secretsmanager.NewFromConfig(cfg)

	out, err := client.GetSecretValue(context.TODO(), &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", "", fmt.Errorf("erro ao buscar segredo %s: %w", secretID, err)
	}

	var creds credentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return "", "", fmt.Errorf("segredo %s em formato inesperado: %w", secretID, err)
	}
	return creds.Username, creds.Password, nil
}
