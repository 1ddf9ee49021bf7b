package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/restock-api/internal/domain"
)

// StoreRepo provides typed DynamoDB operations for the stores table.
// The table key is the composite (shop, app); tenant scoping is mandatory.
type StoreRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewStoreRepo(client *dynamodb.Client, tableName string) *StoreRepo {
	return &StoreRepo{client: client, tableName: tableName}
}

func (r *StoreRepo) Put(ctx context.Context, s *domain.StoreCredential) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal store credential: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *StoreRepo) Get(ctx context.Context, shop, app string) (*domain.StoreCredential, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("shop", shop, "app", app),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("store %s/%s: %w", shop, app, domain.ErrNotFound)
	}
	var s domain.StoreCredential
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkUninstalled flags the credential as revoked while keeping the record.
// The token itself is blanked so a stale row can never authenticate.
func (r *StoreRepo) MarkUninstalled(ctx context.Context, shop, app string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldUninstalled: true,
		fieldAccessToken: "",
		fieldUpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("shop", shop, "app", app),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
