package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/restock-api/internal/domain"
	"github.com/restock-api/internal/pkg/id"
)

// NotificationRequestRepo provides typed DynamoDB operations for the
// notification_requests table.
type NotificationRequestRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRequestRepo(client *dynamodb.Client, tableName string) *NotificationRequestRepo {
	return &NotificationRequestRepo{client: client, tableName: tableName}
}

// Put persists a notification request. A missing RequestID is assigned here so
// callers always get back the identity the table will use.
func (r *NotificationRequestRepo) Put(ctx context.Context, req *domain.NotificationRequest) error {
	if req.RequestID == "" {
		req.RequestID = id.New()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	item, err := attributevalue.MarshalMap(req)
	if err != nil {
		return fmt.Errorf("marshal notification request: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRequestRepo) Get(ctx context.Context, requestID string) (*domain.NotificationRequest, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("request_id", requestID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification request not found: %w", domain.ErrNotFound)
	}
	var req domain.NotificationRequest
	if err := attributevalue.UnmarshalMap(out.Item, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingByItem queries the inventory_item_id GSI for requests that have
// not been notified yet, oldest first.
func (r *NotificationRequestRepo) ListPendingByItem(ctx context.Context, inventoryItemID string) ([]domain.NotificationRequest, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("inventory_item_id-created_at-index"),
		KeyConditionExpression: aws.String("inventory_item_id = :iid"),
		FilterExpression:       aws.String("notified = :pending"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":iid":     &types.AttributeValueMemberS{Value: inventoryItemID},
			":pending": &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	var requests []domain.NotificationRequest
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// FindPending looks up a still-pending request for the signup tuple via the
// email GSI. Returns (nil, nil) when no match exists; absence is not an error
// on this path.
func (r *NotificationRequestRepo) FindPending(ctx context.Context, email, productID, variantID, storeDomain string) (*domain.NotificationRequest, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :email"),
		FilterExpression:       aws.String("product_id = :pid AND variant_id = :vid AND store_domain = :shop AND notified = :pending"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email":   &types.AttributeValueMemberS{Value: email},
			":pid":     &types.AttributeValueMemberS{Value: productID},
			":vid":     &types.AttributeValueMemberS{Value: variantID},
			":shop":    &types.AttributeValueMemberS{Value: storeDomain},
			":pending": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return nil, err
	}
	// No Limit here: DynamoDB applies Limit before the filter expression, which
	// could hide a pending match behind already-notified rows.
	if len(out.Items) == 0 {
		return nil, nil
	}
	var req domain.NotificationRequest
	if err := attributevalue.UnmarshalMap(out.Items[0], &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkNotified flips the notified flag to true. Re-marking an already-notified
// request is a no-op; marking an id that never existed is ErrNotFound rather
// than an upsert.
func (r *NotificationRequestRepo) MarkNotified(ctx context.Context, requestID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldNotified:  true,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("request_id", requestID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(request_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("notification request %s: %w", requestID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}
