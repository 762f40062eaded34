package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultRequestsTableName = "requests"
	requestsAccountIDIndex   = "account_id-index"
)

type accountRefItem struct {
	ID       string `dynamodbav:"id"`
	Username string `dynamodbav:"username,omitempty"`
	Email    string `dynamodbav:"email"`
}

type guestContactItem struct {
	Name          string `dynamodbav:"name"`
	Email         string `dynamodbav:"email"`
	ContactNumber string `dynamodbav:"contact_number,omitempty"`
}

type customProjectItem struct {
	Name         string   `dynamodbav:"name"`
	Description  string   `dynamodbav:"description,omitempty"`
	Technologies []string `dynamodbav:"technologies,omitempty"`
}

type statusHistoryItem struct {
	Status    string `dynamodbav:"status"`
	Notes     string `dynamodbav:"notes,omitempty"`
	UpdatedBy string `dynamodbav:"updated_by"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

type requestItem struct {
	ID         string `dynamodbav:"id"`
	ClientType string `dynamodbav:"client_type"`

	AccountID string             `dynamodbav:"account_id,omitempty"`
	Account   *accountRefItem    `dynamodbav:"account,omitempty"`
	Guest     *guestContactItem  `dynamodbav:"guest_info,omitempty"`
	ProjectID string             `dynamodbav:"project_id,omitempty"`
	Custom    *customProjectItem `dynamodbav:"custom_project,omitempty"`

	Status        string `dynamodbav:"status"`
	PaymentOption string `dynamodbav:"payment_option"`
	PaymentStatus string `dynamodbav:"payment_status"`

	EstimatedPrice int64 `dynamodbav:"estimated_price,omitempty"`
	ActualPrice    int64 `dynamodbav:"actual_price,omitempty"`

	CurrentModule      string `dynamodbav:"current_module,omitempty"`
	AdminNotes         string `dynamodbav:"admin_notes,omitempty"`
	GithubLink         string `dynamodbav:"github_link,omitempty"`
	ExpectedCompletion string `dynamodbav:"expected_completion,omitempty"`

	StatusHistory []statusHistoryItem `dynamodbav:"status_history"`

	ApprovedAt  string `dynamodbav:"approved_at,omitempty"`
	CompletedAt string `dynamodbav:"completed_at,omitempty"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`

	Version int64 `dynamodbav:"version"`
}

// RequestDynamoRepository persists Request entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: account_id-index (PK: account_id)
//
// Status history is embedded in the item so the append travels in the same
// conditional write as the status change. The version attribute implements
// optimistic concurrency: Update puts the whole item conditioned on the
// version the caller read.

type RequestDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IRequestRepository = (*RequestDynamoRepository)(nil)

func NewRequestDynamoRepository(ddb *dynamodb.Client) *RequestDynamoRepository {
	return &RequestDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("REQUESTS_TABLE", defaultRequestsTableName),
	}
}

func (r *RequestDynamoRepository) Create(ctx context.Context, req entities.Request) (entities.Request, error) {
	av, err := attributevalue.MarshalMap(toRequestItem(req))
	if err != nil {
		return entities.Request{}, err
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
		return entities.Request{}, err
	}
	return req, nil
}

func (r *RequestDynamoRepository) GetByID(ctx context.Context, id string) (entities.Request, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Request{}, err
	}
	if len(out.Item) == 0 {
		return entities.Request{}, nil
	}

	var it requestItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Request{}, err
	}
	return fromRequestItem(it), nil
}

func (r *RequestDynamoRepository) ListByAccountID(ctx context.Context, accountID string) ([]entities.Request, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(requestsAccountIDIndex),
		KeyConditionExpression: aws.String("account_id = :aid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: accountID},
		},
	})
	if err != nil {
		return nil, err
	}
	return unmarshalRequests(out.Items)
}

func (r *RequestDynamoRepository) ListAll(ctx context.Context) ([]entities.Request, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return unmarshalRequests(items)
}

// Update persists the full entity conditioned on the version the caller read
// and bumps it. A lost race surfaces as interfaces.ErrVersionConflict so the
// use case can reload and retry.
func (r *RequestDynamoRepository) Update(ctx context.Context, req entities.Request, expectedVersion int64) (entities.Request, error) {
	req.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toRequestItem(req))
	if err != nil {
		return entities.Request{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: int64ToString(expectedVersion)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Request{}, interfaces.ErrVersionConflict
		}
		return entities.Request{}, err
	}
	return req, nil
}

func unmarshalRequests(raw []map[string]types.AttributeValue) ([]entities.Request, error) {
	reqs := make([]entities.Request, 0, len(raw))
	for _, item := range raw {
		var it requestItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return nil, err
		}
		reqs = append(reqs, fromRequestItem(it))
	}
	// Listings are newest first.
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
	return reqs, nil
}

func toRequestItem(r entities.Request) requestItem {
	it := requestItem{
		ID:                 r.ID,
		ClientType:         string(r.ClientType),
		ProjectID:          r.ProjectID,
		Status:             string(r.Status),
		PaymentOption:      string(r.PaymentOption),
		PaymentStatus:      string(r.PaymentStatus),
		EstimatedPrice:     r.EstimatedPrice,
		ActualPrice:        r.ActualPrice,
		CurrentModule:      r.CurrentModule,
		AdminNotes:         r.AdminNotes,
		GithubLink:         r.GithubLink,
		ExpectedCompletion: r.ExpectedCompletion,
		StatusHistory:      make([]statusHistoryItem, 0, len(r.StatusHistory)),
		CreatedAt:          r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:          r.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Version:            r.Version,
	}
	if r.Account != nil {
		it.AccountID = r.Account.ID
		it.Account = &accountRefItem{ID: r.Account.ID, Username: r.Account.Username, Email: r.Account.Email}
	}
	if r.Guest != nil {
		it.Guest = &guestContactItem{Name: r.Guest.Name, Email: r.Guest.Email, ContactNumber: r.Guest.ContactNumber}
	}
	if r.CustomProject != nil {
		it.Custom = &customProjectItem{
			Name:         r.CustomProject.Name,
			Description:  r.CustomProject.Description,
			Technologies: r.CustomProject.Technologies,
		}
	}
	for _, h := range r.StatusHistory {
		it.StatusHistory = append(it.StatusHistory, statusHistoryItem{
			Status:    string(h.Status),
			Notes:     h.Notes,
			UpdatedBy: h.UpdatedBy,
			UpdatedAt: h.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	if r.ApprovedAt != nil {
		it.ApprovedAt = r.ApprovedAt.UTC().Format(time.RFC3339Nano)
	}
	if r.CompletedAt != nil {
		it.CompletedAt = r.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	return it
}

func fromRequestItem(it requestItem) entities.Request {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)

	r := entities.Request{
		ID:                 it.ID,
		ClientType:         entities.ClientType(it.ClientType),
		ProjectID:          it.ProjectID,
		Status:             entities.RequestStatus(it.Status),
		PaymentOption:      entities.PaymentOption(it.PaymentOption),
		PaymentStatus:      entities.PaymentState(it.PaymentStatus),
		EstimatedPrice:     it.EstimatedPrice,
		ActualPrice:        it.ActualPrice,
		CurrentModule:      it.CurrentModule,
		AdminNotes:         it.AdminNotes,
		GithubLink:         it.GithubLink,
		ExpectedCompletion: it.ExpectedCompletion,
		StatusHistory:      make([]entities.StatusHistoryEntry, 0, len(it.StatusHistory)),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
		Version:            it.Version,
	}
	if it.Account != nil {
		r.Account = &entities.AccountRef{ID: it.Account.ID, Username: it.Account.Username, Email: it.Account.Email}
	}
	if it.Guest != nil {
		r.Guest = &entities.GuestContact{Name: it.Guest.Name, Email: it.Guest.Email, ContactNumber: it.Guest.ContactNumber}
	}
	if it.Custom != nil {
		r.CustomProject = &entities.CustomProject{
			Name:         it.Custom.Name,
			Description:  it.Custom.Description,
			Technologies: it.Custom.Technologies,
		}
	}
	for _, h := range it.StatusHistory {
		updated, _ := time.Parse(time.RFC3339Nano, h.UpdatedAt)
		r.StatusHistory = append(r.StatusHistory, entities.StatusHistoryEntry{
			Status:    entities.RequestStatus(h.Status),
			Notes:     h.Notes,
			UpdatedBy: h.UpdatedBy,
			UpdatedAt: updated,
		})
	}
	if it.ApprovedAt != "" {
		t, _ := time.Parse(time.RFC3339Nano, it.ApprovedAt)
		r.ApprovedAt = &t
	}
	if it.CompletedAt != "" {
		t, _ := time.Parse(time.RFC3339Nano, it.CompletedAt)
		r.CompletedAt = &t
	}
	return r
}
