package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"finance-bot/handler"
	"finance-bot/internal/config"
	"finance-bot/internal/integrations/ledger"
	"finance-bot/internal/integrations/paramstore"
	"finance-bot/internal/integrations/telegram"
	"finance-bot/internal/repository"
	"finance-bot/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "err", err)
		os.Exit(1)
	}

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	ledgerURL := cfg.LedgerAPIURL
	if ledgerURL == "" {
		ledgerURL, err = paramstore.Lookup(ctx, ssmClient, cfg.LedgerURLParameter())
		if err != nil {
			slog.Error("failed to read ledger URL parameter", "err", err)
			os.Exit(1)
		}
	}
	if ledgerURL == "" {
		slog.Error("ledger URL is not configured", "env", "LEDGER_API_URL", "param", cfg.LedgerURLParameter())
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	telegramClient, err := telegram.NewClient(ssmClient, cfg.ParamPrefix, cfg.OwnerChatID, telegram.WithHTTPClient(httpClient))
	if err != nil {
		slog.Error("failed to create Telegram client", "err", err)
		os.Exit(1)
	}

	ledgerClient, err := ledger.NewClient(ledgerURL, ledger.WithHTTPClient(httpClient))
	if err != nil {
		slog.Error("failed to create ledger client", "err", err)
		os.Exit(1)
	}

	submitOpts := []usecase.SubmitterOption{usecase.WithLocation(loc)}
	if cfg.JournalTable != "" {
		journal, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.JournalTable)
		if err != nil {
			slog.Error("failed to create journal client", "err", err)
			os.Exit(1)
		}
		submitOpts = append(submitOpts, usecase.WithJournal(journal))
	}

	// ---- Handler ----
	submitter, err := usecase.NewSubmitter(telegramClient, ledgerClient, submitOpts...)
	if err != nil {
		slog.Error("failed to create submitter", "err", err)
		os.Exit(1)
	}

	engine, err := usecase.NewEngine(telegramClient, usecase.NewCategoryCache(ledgerClient, cfg.CategoriesTTL), submitter)
	if err != nil {
		slog.Error("failed to create conversation engine", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(engine, cfg.OwnerChatID)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
