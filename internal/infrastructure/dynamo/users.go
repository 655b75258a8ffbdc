package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jobboard-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Create inserts a new user together with the guard item that reserves its
// email. Both writes are conditional and happen in one transaction, so two
// concurrent registrations for the same email cannot both succeed; the loser
// gets domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	guard := map[string]types.AttributeValue{
		attrUserID:  &types.AttributeValueMemberS{Value: emailGuardKey(u.Email)},
		attrOwnerID: &types.AttributeValueMemberS{Value: u.UserID},
	}
	notExists := aws.String("attribute_not_exists(#pk)")
	pkName := map[string]string{"#pk": attrUserID}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     item,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: pkName,
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     guard,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: pkName,
			}},
		},
	})
	if isTransactionConditionFailed(err) {
		return fmt.Errorf("email %q already registered: %w", u.Email, domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail resolves the user through the email GSI and then re-reads the
// base item, because GSI reads are only eventually consistent and the OTP
// fields must be current.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attrEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user with email %q: %w", email, domain.ErrNotFound)
	}
	idAttr, ok := out.Items[0][attrUserID].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("email index item without %s", attrUserID)
	}
	return r.Get(ctx, idAttr.Value)
}

// Update applies a partial update to an existing user. Nil values remove the
// attribute. The write is conditional on the item existing, so updating a
// deleted user returns domain.ErrNotFound instead of creating a stub item.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = attrUserID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return err
}

// ConsumeCode applies updates only while the stored otp still equals code.
// It is how a one-time code is spent: of two concurrent consumers only the
// first write matches, and the other gets domain.ErrInvalidOrExpiredCode. A
// missing user fails the same condition and is reported the same way.
func (r *UserRepo) ConsumeCode(ctx context.Context, userID, code string, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[attrUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = attrUserID
	ue.Names["#otp"] = FieldOTP
	if ue.Values == nil {
		ue.Values = map[string]types.AttributeValue{}
	}
	ue.Values[":code"] = &types.AttributeValueMemberS{Value: code}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk) AND #otp = :code"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user %s: code already used: %w", userID, domain.ErrInvalidOrExpiredCode)
	}
	return err
}

// Delete removes the user and releases its email guard in one transaction.
func (r *UserRepo) Delete(ctx context.Context, u *domain.User) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       strKey(attrUserID, u.UserID),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key:       strKey(attrUserID, emailGuardKey(u.Email)),
			}},
		},
	})
	return err
}
