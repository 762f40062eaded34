package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultOrdersTableName   = "payment_orders"
	defaultCapturesTableName = "payment_events"
	capturesRequestIDIndex   = "request_id-index"
)

type paymentOrderItem struct {
	ID        string `dynamodbav:"id"`
	RequestID string `dynamodbav:"request_id"`
	Amount    int64  `dynamodbav:"amount"`
	Currency  string `dynamodbav:"currency"`
	Option    string `dynamodbav:"option"`
	CreatedAt string `dynamodbav:"created_at"`
}

type paymentCaptureItem struct {
	ID        string `dynamodbav:"id"`
	OrderID   string `dynamodbav:"order_id"`
	RequestID string `dynamodbav:"request_id"`
	Amount    int64  `dynamodbav:"amount"`
	Option    string `dynamodbav:"option"`
	CreatedAt string `dynamodbav:"created_at"`
}

// PaymentOrderDynamoRepository persists PaymentOrder entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string, the gateway order id)

type PaymentOrderDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentOrderRepository = (*PaymentOrderDynamoRepository)(nil)

func NewPaymentOrderDynamoRepository(ddb *dynamodb.Client) *PaymentOrderDynamoRepository {
	return &PaymentOrderDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PAYMENT_ORDERS_TABLE", defaultOrdersTableName),
	}
}

func (r *PaymentOrderDynamoRepository) Create(ctx context.Context, o entities.PaymentOrder) (entities.PaymentOrder, error) {
	av, err := attributevalue.MarshalMap(toPaymentOrderItem(o))
	if err != nil {
		return entities.PaymentOrder{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return entities.PaymentOrder{}, err
	}
	return o, nil
}

func (r *PaymentOrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.PaymentOrder, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentOrder{}, err
	}
	if len(out.Item) == 0 {
		return entities.PaymentOrder{}, nil
	}

	var it paymentOrderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.PaymentOrder{}, err
	}
	return fromPaymentOrderItem(it), nil
}

// PaymentCaptureDynamoRepository persists PaymentCapture entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string, the gateway payment id)
//   - GSI: request_id-index (PK: request_id)
//
// Create is conditional on the id not existing: replayed webhook deliveries
// lose the write and are reported as a zero-value capture, not an error.

type PaymentCaptureDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentCaptureRepository = (*PaymentCaptureDynamoRepository)(nil)

func NewPaymentCaptureDynamoRepository(ddb *dynamodb.Client) *PaymentCaptureDynamoRepository {
	return &PaymentCaptureDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PAYMENT_EVENTS_TABLE", defaultCapturesTableName),
	}
}

func (r *PaymentCaptureDynamoRepository) Create(ctx context.Context, c entities.PaymentCapture) (entities.PaymentCapture, error) {
	av, err := attributevalue.MarshalMap(toPaymentCaptureItem(c))
	if err != nil {
		return entities.PaymentCapture{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.PaymentCapture{}, nil
		}
		return entities.PaymentCapture{}, err
	}
	return c, nil
}

func (r *PaymentCaptureDynamoRepository) GetByID(ctx context.Context, id string) (entities.PaymentCapture, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentCapture{}, err
	}
	if len(out.Item) == 0 {
		return entities.PaymentCapture{}, nil
	}

	var it paymentCaptureItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.PaymentCapture{}, err
	}
	return fromPaymentCaptureItem(it), nil
}

func (r *PaymentCaptureDynamoRepository) ListByRequestID(ctx context.Context, requestID string) ([]entities.PaymentCapture, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(capturesRequestIDIndex),
		KeyConditionExpression: aws.String("request_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: requestID},
		},
	})
	if err != nil {
		return nil, err
	}

	items := make([]entities.PaymentCapture, 0, len(out.Items))
	for _, raw := range out.Items {
		var it paymentCaptureItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		items = append(items, fromPaymentCaptureItem(it))
	}
	return items, nil
}

func toPaymentOrderItem(o entities.PaymentOrder) paymentOrderItem {
	return paymentOrderItem{
		ID:        o.ID,
		RequestID: o.RequestID,
		Amount:    o.Amount,
		Currency:  o.Currency,
		Option:    string(o.Option),
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromPaymentOrderItem(it paymentOrderItem) entities.PaymentOrder {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	return entities.PaymentOrder{
		ID:        it.ID,
		RequestID: it.RequestID,
		Amount:    it.Amount,
		Currency:  it.Currency,
		Option:    entities.PaymentOption(it.Option),
		CreatedAt: createdAt,
	}
}

func toPaymentCaptureItem(c entities.PaymentCapture) paymentCaptureItem {
	return paymentCaptureItem{
		ID:        c.ID,
		OrderID:   c.OrderID,
		RequestID: c.RequestID,
		Amount:    c.Amount,
		Option:    string(c.Option),
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromPaymentCaptureItem(it paymentCaptureItem) entities.PaymentCapture {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	return entities.PaymentCapture{
		ID:        it.ID,
		OrderID:   it.OrderID,
		RequestID: it.RequestID,
		Amount:    it.Amount,
		Option:    entities.PaymentOption(it.Option),
		CreatedAt: createdAt,
	}
}
