package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"finance-bot/internal/domain"
)

const (
	pkPrefixDay    = "DAY#"
	skPrefixSubmit = "SUB#"
	ledgerDate     = "02/01/2006"
	partitionDate  = "2006-01-02"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client journals finalize outcomes to a DynamoDB table, one partition per
// ledger day.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// dayPK keys entries by the record's civil date. Unparseable dates fall back
// to the raw text.
func dayPK(date string) string {
	d, err := time.Parse(ledgerDate, date)
	if err != nil {
		return pkPrefixDay + date
	}
	return pkPrefixDay + d.Format(partitionDate)
}

func submissionSK(recordedAt time.Time, id string) string {
	return skPrefixSubmit + recordedAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

// RecordSubmission writes one entry. Entries are never overwritten.
func (c *Client) RecordSubmission(ctx context.Context, entry domain.SubmissionEntry) error {
	if entry.ID == "" {
		return errors.New("repository: RecordSubmission: entry ID is required")
	}
	if entry.RecordedAt.IsZero() {
		return errors.New("repository: RecordSubmission: recorded time is required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                submissionItem(entry),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordSubmission: %w", err)
	}
	return nil
}

func submissionItem(entry domain.SubmissionEntry) map[string]types.AttributeValue {
	r := entry.Record
	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: dayPK(r.Date)},
		"SK":         &types.AttributeValueMemberS{Value: submissionSK(entry.RecordedAt, entry.ID)},
		"id":         &types.AttributeValueMemberS{Value: entry.ID},
		"name":       &types.AttributeValueMemberS{Value: r.Name},
		"amount":     &types.AttributeValueMemberS{Value: r.Amount},
		"date":       &types.AttributeValueMemberS{Value: r.Date},
		"category":   &types.AttributeValueMemberS{Value: r.Category},
		"account":    &types.AttributeValueMemberS{Value: r.Account},
		"payerIsPai": &types.AttributeValueMemberBOOL{Value: r.PayerIsPai},
		"creditCard": &types.AttributeValueMemberBOOL{Value: r.IsCreditCard},
		"outcome":    &types.AttributeValueMemberS{Value: string(entry.Outcome)},
		"recordedAt": &types.AttributeValueMemberS{Value: entry.RecordedAt.UTC().Format(time.RFC3339)},
	}
	if entry.Message != "" {
		item["message"] = &types.AttributeValueMemberS{Value: entry.Message}
	}
	if entry.TTL > 0 {
		item["ttl"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", entry.TTL)}
	}
	return item
}
