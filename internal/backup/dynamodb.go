package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// DynamoDBClient wraps the table-level operations the backup and restore
// paths need.
type DynamoDBClient struct {
	client *dynamodb.Client
	log    logrus.FieldLogger
}

// NewDynamoDBClient creates a client from the default AWS config chain.
func NewDynamoDBClient(ctx context.Context, log logrus.FieldLogger) (*DynamoDBClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &DynamoDBClient{
		client: dynamodb.NewFromConfig(cfg),
		log:    ensureLogger(log),
	}, nil
}

// ScanTable reads every item from a table, following pagination until the
// scan is exhausted.
func (d *DynamoDBClient) ScanTable(ctx context.Context, tableName string, progressFunc func(int)) ([]map[string]types.AttributeValue, error) {
	var allItems []map[string]types.AttributeValue
	var lastEvaluatedKey map[string]types.AttributeValue
	pages := 0

	for {
		scanInput := &dynamodb.ScanInput{
			TableName: aws.String(tableName),
		}
		if lastEvaluatedKey != nil {
			scanInput.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := d.client.Scan(ctx, scanInput)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", tableName, err)
		}

		allItems = append(allItems, result.Items...)
		pages++
		if progressFunc != nil {
			progressFunc(len(result.Items))
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey

		// Small delay between pages to avoid throttling
		time.Sleep(50 * time.Millisecond)
	}

	d.log.WithFields(logrus.Fields{
		"table": tableName,
		"items": len(allItems),
		"pages": pages,
	}).Info("table scan complete")
	return allItems, nil
}

// BatchWriteItems writes items to a table in batches of 25, the DynamoDB
// maximum, retrying throttled batches with backoff. Existing rows with the
// same key are overwritten.
func (d *DynamoDBClient) BatchWriteItems(ctx context.Context, tableName string, items []map[string]types.AttributeValue, progressFunc func(int)) error {
	const batchSize = 25
	const maxRetries = 5
	totalBatches := (len(items) + batchSize - 1) / batchSize
	written := 0

	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]
		batchNum := (i / batchSize) + 1

		writeRequests := make([]types.WriteRequest, len(batch))
		for j, item := range batch {
			writeRequests[j] = types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			}
		}

		batchInput := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				tableName: writeRequests,
			},
		}

		var lastErr error
		for retry := 0; retry < maxRetries; retry++ {
			result, err := d.client.BatchWriteItem(ctx, batchInput)
			if err != nil {
				lastErr = err
				if retry < maxRetries-1 {
					backoff := time.Duration(retry+1) * 500 * time.Millisecond
					d.log.WithError(err).Warnf("batch %d/%d failed, retrying in %v", batchNum, totalBatches, backoff)
					time.Sleep(backoff)
					continue
				}
				return fmt.Errorf("failed to batch write to table %s (batch %d/%d): %w", tableName, batchNum, totalBatches, err)
			}
			lastErr = nil

			// Unprocessed items signal throttling; resubmit just those
			if unprocessed := result.UnprocessedItems; len(unprocessed) > 0 {
				if retry < maxRetries-1 {
					batchInput.RequestItems = unprocessed
					backoff := time.Duration(retry+1) * 500 * time.Millisecond
					d.log.Warnf("%d items unprocessed in batch %d/%d, retrying in %v", len(unprocessed[tableName]), batchNum, totalBatches, backoff)
					time.Sleep(backoff)
					continue
				}
				d.log.Warnf("%d items still unprocessed after %d retries (batch %d/%d)", len(unprocessed[tableName]), maxRetries, batchNum, totalBatches)
			}

			written += len(batch)
			if progressFunc != nil {
				progressFunc(len(batch))
			}
			break
		}
		if lastErr != nil {
			return lastErr
		}

		if end < len(items) {
			time.Sleep(100 * time.Millisecond)
		}
	}

	d.log.WithFields(logrus.Fields{
		"table":   tableName,
		"items":   written,
		"batches": totalBatches,
	}).Info("batch write complete")
	return nil
}

// PutItemsIfAbsent writes items one at a time with a condition that the
// named key attribute is absent, so rows already live in the table are
// never overwritten. Returns how many items were written and how many
// were skipped.
func (d *DynamoDBClient) PutItemsIfAbsent(ctx context.Context, tableName, keyAttr string, items []map[string]types.AttributeValue, progressFunc func(int)) (int, int, error) {
	condition := fmt.Sprintf("attribute_not_exists(%s)", keyAttr)
	written, skipped := 0, 0

	for _, item := range items {
		_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(tableName),
			Item:                item,
			ConditionExpression: aws.String(condition),
		})
		if err != nil {
			var conditionFailed *types.ConditionalCheckFailedException
			if errors.As(err, &conditionFailed) {
				skipped++
				continue
			}
			return written, skipped, fmt.Errorf("failed to put item into table %s: %w", tableName, err)
		}

		written++
		if progressFunc != nil {
			progressFunc(1)
		}
	}

	d.log.WithFields(logrus.Fields{
		"table":   tableName,
		"written": written,
		"skipped": skipped,
	}).Info("conditional restore complete")
	return written, skipped, nil
}

// GetTableDescription retrieves table schema information.
func (d *DynamoDBClient) GetTableDescription(ctx context.Context, tableName string) (*types.TableDescription, error) {
	result, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}

	return result.Table, nil
}

// itemToPlain converts a DynamoDB attribute map to plain Go values so the
// export is ordinary JSON rather than SDK wire structs.
func itemToPlain(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	var plain map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &plain); err != nil {
		return nil, fmt.Errorf("failed to convert item: %w", err)
	}
	return plain, nil
}

// itemFromPlain converts a decoded JSON map back to a DynamoDB attribute
// map for writing.
func itemFromPlain(plain map[string]interface{}) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to convert item: %w", err)
	}
	return item, nil
}

func ensureLogger(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	return logrus.StandardLogger()
}
