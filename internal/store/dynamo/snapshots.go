// Package dynamo implements the snapshot store on DynamoDB for deployments
// that keep the date-keyed cache outside the platform database.
package dynamo

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

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// snapshotTTL keeps roughly three years of daily history per entity before
// DynamoDB expires the row.
const snapshotTTL = 3 * 365 * 24 * time.Hour

// snapshotItem is the table layout: entityKey is the partition key,
// asOfDate the sort key. The condition on asOfDate makes writes
// first-writer-wins without any coordination.
type snapshotItem struct {
	EntityKey string `dynamodbav:"entityKey"`
	model.SmartFollowersSnapshot
	TTL int64 `dynamodbav:"ttl"`
}

func entityKey(entityType model.EntityType, entityID, xUserID string) string {
	return fmt.Sprintf("%s#%s#%s", entityType, entityID, xUserID)
}

// SnapshotStore handles DynamoDB snapshot operations.
type SnapshotStore struct {
	client    *dynamodb.Client
	tableName string
}

var _ store.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a snapshot store against the given table.
func NewSnapshotStore(ctx context.Context, tableName string) (*SnapshotStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SnapshotStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

// NewSnapshotStoreWithClient wires an existing client, used by the backup
// tooling and tests.
func NewSnapshotStoreWithClient(client *dynamodb.Client, tableName string) *SnapshotStore {
	return &SnapshotStore{client: client, tableName: tableName}
}

// Get returns the snapshot for the key, or store.ErrNotFound.
func (s *SnapshotStore) Get(ctx context.Context, key model.SnapshotKey) (*model.SmartFollowersSnapshot, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"entityKey": &types.AttributeValueMemberS{Value: entityKey(key.EntityType, key.EntityID, key.XUserID)},
			"asOfDate":  &types.AttributeValueMemberS{Value: key.AsOfDate},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s@%s: %w", key.EntityID, key.AsOfDate, err)
	}
	if result.Item == nil {
		return nil, store.ErrNotFound
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	snap := item.SmartFollowersSnapshot
	return &snap, nil
}

// Insert writes the snapshot if no row exists for its key, returning
// store.ErrAlreadyExists when one does.
func (s *SnapshotStore) Insert(ctx context.Context, snap model.SmartFollowersSnapshot) error {
	item, err := attributevalue.MarshalMap(snapshotItem{
		EntityKey:              entityKey(snap.EntityType, snap.EntityID, snap.XUserID),
		SmartFollowersSnapshot: snap,
		TTL:                    time.Now().Add(snapshotTTL).Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(asOfDate)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert snapshot %s@%s: %w", snap.EntityID, snap.AsOfDate, err)
	}
	return nil
}

// History returns snapshots for the entity with asOfDate in [from, to],
// oldest first.
func (s *SnapshotStore) History(ctx context.Context, entityType model.EntityType, entityID, xUserID, from, to string) ([]model.SmartFollowersSnapshot, error) {
	var snaps []model.SmartFollowersSnapshot
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		queryInput := &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("entityKey = :ek AND asOfDate BETWEEN :from AND :to"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":ek":   &types.AttributeValueMemberS{Value: entityKey(entityType, entityID, xUserID)},
				":from": &types.AttributeValueMemberS{Value: from},
				":to":   &types.AttributeValueMemberS{Value: to},
			},
		}
		if lastEvaluatedKey != nil {
			queryInput.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := s.client.Query(ctx, queryInput)
		if err != nil {
			return nil, fmt.Errorf("failed to query snapshot history for %s: %w", entityID, err)
		}

		for _, raw := range result.Items {
			var item snapshotItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
			}
			snaps = append(snaps, item.SmartFollowersSnapshot)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}
	return snaps, nil
}
