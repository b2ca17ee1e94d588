package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/ports"
	"github.com/makkenno/ittasu/domain/core/aggregates"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
	"github.com/makkenno/ittasu/pkg/utils"
)

const (
	entityTypeWorkspace = "WORKSPACE"
	snapshotSortKey     = "SNAPSHOT"
)

// API is the subset of the DynamoDB client used by the repository
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// WorkspaceRepository stores one item per workspace holding its full snapshot
type WorkspaceRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(client API, tableName string, logger *zap.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// workspaceItem represents the DynamoDB item structure for a workspace
type workspaceItem struct {
	PK          string              `dynamodbav:"PK"`
	SK          string              `dynamodbav:"SK"`
	EntityType  string              `dynamodbav:"EntityType"`
	WorkspaceID string              `dynamodbav:"WorkspaceID"`
	Snapshot    aggregates.Snapshot `dynamodbav:"Snapshot"`
	NodeCount   int                 `dynamodbav:"NodeCount"`
	EdgeCount   int                 `dynamodbav:"EdgeCount"`
	UpdatedAt   string              `dynamodbav:"UpdatedAt"`
	Version     int                 `dynamodbav:"Version"`
}

// Throttling codes worth retrying after a backoff
var throttlingCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"RequestLimitExceeded":                   true,
	"ThrottlingException":                    true,
}

func awsErrorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

func databaseError(operation string, err error) *pkgerrors.AppError {
	appErr := pkgerrors.NewDatabaseError(operation, err)
	if code := awsErrorCode(err); code != "" {
		appErr.WithDetail("awsErrorCode", code)
		if throttlingCodes[code] {
			appErr.WithDetail("retryable", true)
		}
	}
	return appErr
}

func workspaceKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("WORKSPACE#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: snapshotSortKey},
	}
}

// Load retrieves a workspace record
func (r *WorkspaceRepository) Load(ctx context.Context, id string) (ports.WorkspaceRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            workspaceKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.Error("Failed to load workspace from DynamoDB",
			zap.String("workspaceID", id),
			zap.Error(err),
		)
		return ports.WorkspaceRecord{}, databaseError("GetItem", err)
	}
	if len(out.Item) == 0 {
		return ports.WorkspaceRecord{}, pkgerrors.NewNotFoundError(fmt.Sprintf("workspace %s", id))
	}

	var item workspaceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return ports.WorkspaceRecord{}, pkgerrors.Wrap(err, "failed to unmarshal workspace")
	}

	updatedAt, err := utils.ParseTimestamp(item.UpdatedAt)
	if err != nil {
		r.logger.Warn("Workspace has an unreadable UpdatedAt",
			zap.String("workspaceID", id),
			zap.String("updatedAt", item.UpdatedAt),
		)
	}

	return ports.WorkspaceRecord{
		ID:        item.WorkspaceID,
		Snapshot:  item.Snapshot,
		Version:   item.Version,
		UpdatedAt: updatedAt,
	}, nil
}

// Save writes the record with a condition on the stored version
func (r *WorkspaceRepository) Save(ctx context.Context, record ports.WorkspaceRecord, expectedVersion int) error {
	if record.ID == "" {
		return pkgerrors.NewValidationError("workspace id is required")
	}

	item := workspaceItem{
		PK:          fmt.Sprintf("WORKSPACE#%s", record.ID),
		SK:          snapshotSortKey,
		EntityType:  entityTypeWorkspace,
		WorkspaceID: record.ID,
		Snapshot:    record.Snapshot,
		NodeCount:   len(record.Snapshot.Nodes),
		EdgeCount:   len(record.Snapshot.Edges),
		UpdatedAt:   utils.FormatTimestamp(record.UpdatedAt),
		Version:     record.Version,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal workspace")
	}

	cond := expression.AttributeNotExists(expression.Name("PK"))
	if expectedVersion > 0 {
		cond = expression.Name("Version").Equal(expression.Value(expectedVersion))
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build condition expression")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if awsErrorCode(err) == "ConditionalCheckFailedException" {
			return pkgerrors.NewVersionConflictError("workspace "+record.ID, expectedVersion)
		}
		r.logger.Error("Failed to save workspace to DynamoDB",
			zap.String("workspaceID", record.ID),
			zap.Int("version", record.Version),
			zap.Error(err),
		)
		return databaseError("PutItem", err)
	}

	r.logger.Debug("Saved workspace to DynamoDB",
		zap.String("workspaceID", record.ID),
		zap.Int("version", record.Version),
		zap.Int("nodeCount", item.NodeCount),
		zap.Int("edgeCount", item.EdgeCount),
	)
	return nil
}

// Delete removes a workspace item
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       workspaceKey(id),
	})
	if err != nil {
		r.logger.Error("Failed to delete workspace from DynamoDB",
			zap.String("workspaceID", id),
			zap.Error(err),
		)
		return databaseError("DeleteItem", err)
	}
	return nil
}
