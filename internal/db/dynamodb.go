// Package db archives scored counterspeech to DynamoDB when an archive table
// is configured. The flat files remain the source of truth; the table exists
// so annotation tooling can query results without shipping files around.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/models"
)

var dbClient *dynamodb.Client

// ArchiveTableName returns the configured table, or "" when archiving is
// disabled.
func ArchiveTableName() string {
	return os.Getenv("ARCHIVE_TABLE")
}

// ArchiveScoredOutputs batch-writes scored entries, retrying unprocessed
// items with backoff. Items are keyed by model plus comment text hash inside
// the marshaled map.
func ArchiveScoredOutputs(ctx context.Context, tableName string, outputs []models.ScoredOutput) error {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	const maxBatchSize = 25
	for i := 0; i < len(outputs); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := i + maxBatchSize
		if end > len(outputs) {
			end = len(outputs)
		}

		writeRequests := make([]types.WriteRequest, 0, maxBatchSize)
		for _, output := range outputs[i:end] {
			item, err := attributevalue.MarshalMap(output)
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal scored output: %w", err)
			}
			item["scored_at"] = &types.AttributeValueMemberN{
				Value: fmt.Sprintf("%d", time.Now().Unix()),
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				tableName: writeRequests,
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write scored outputs: %w", err)
		}

		// Retry writing unprocessed items
		retryCount := 0
		backoffDuration := time.Millisecond * 500
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoffDuration)
			backoffDuration *= 2
			slog.Warn("[DynamoDB] Retrying unprocessed items...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[tableName])),
			)

			out, err = dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
			}
			retryCount++
		}

		if len(out.UnprocessedItems) > 0 {
			slog.Error("[DynamoDB] Some items were not written even after retries",
				slog.Int("remaining_items", len(out.UnprocessedItems[tableName])))
		}
	}
	slog.Info("[DynamoDB] Archived scored outputs",
		slog.String("table", tableName),
		slog.Int("count", len(outputs)))
	return nil
}
