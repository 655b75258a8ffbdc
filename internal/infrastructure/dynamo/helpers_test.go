package dynamo

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "name"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"phone": "+15551234567",
		"name":  "Alice",
		"role":  "Worker",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys are sorted: name < phone < role
	assert.Equal(t, "name", ue1.Names["#f0"])
	assert.Equal(t, "phone", ue1.Names["#f1"])
	assert.Equal(t, "role", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_NilValuesBecomeRemove(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		FieldIsVerified: true,
		FieldOTP:        nil,
		FieldOTPExpiry:  nil,
	})
	require.NoError(t, err)

	// is_verified < otp < otp_expiry
	assert.Equal(t, "SET #f0 = :v0 REMOVE #f1, #f2", ue.Expr)
	assert.Equal(t, "otp", ue.Names["#f1"])
	assert.Equal(t, "otp_expiry", ue.Names["#f2"])
	assert.Len(t, ue.Values, 1)
}

func TestBuildUpdateExpr_OnlyRemove_HasNoValues(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{FieldOTP: nil})
	require.NoError(t, err)
	assert.Equal(t, "REMOVE #f0", ue.Expr)
	assert.Nil(t, ue.Values)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{FieldIsVerified: true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestIsTransactionConditionFailed(t *testing.T) {
	cancelled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
	assert.True(t, isTransactionConditionFailed(cancelled))

	throttled := &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
	}
	assert.False(t, isTransactionConditionFailed(throttled))
	assert.False(t, isTransactionConditionFailed(errors.New("boom")))
	assert.False(t, isTransactionConditionFailed(nil))
}
