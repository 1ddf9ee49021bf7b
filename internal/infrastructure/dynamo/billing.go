package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/restock-api/internal/domain"
)

// BillingRepo provides typed DynamoDB operations for the billing_charges table.
type BillingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBillingRepo(client *dynamodb.Client, tableName string) *BillingRepo {
	return &BillingRepo{client: client, tableName: tableName}
}

func (r *BillingRepo) Put(ctx context.Context, c *domain.BillingCharge) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal billing charge: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByShop queries the shop GSI for all charges recorded for one shop.
func (r *BillingRepo) ListByShop(ctx context.Context, shop string) ([]domain.BillingCharge, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("shop-index"),
		KeyConditionExpression: aws.String("shop = :shop"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":shop": &types.AttributeValueMemberS{Value: shop},
		},
	})
	if err != nil {
		return nil, err
	}
	var charges []domain.BillingCharge
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &charges); err != nil {
		return nil, err
	}
	return charges, nil
}
