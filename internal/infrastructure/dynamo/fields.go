package dynamo

// DynamoDB attribute names used in keys, conditions and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	attrUserID    = "user_id"
	attrEmail     = "email"
	attrSessionID = "session_id"
	attrExpiresAt = "expires_at"
	attrOwnerID   = "owner_id"
	attrUpdatedAt = "updated_at"

	emailIndex = "email-index"
)

// User attributes the auth service changes through UserRepo.Update.
const (
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldRole         = "role"
	FieldPasswordHash = "password_hash"
	FieldIsVerified   = "is_verified"
	FieldOTP          = "otp"
	FieldOTPExpiry    = "otp_expiry"
)

// emailGuardKey is the user_id of the placeholder item that reserves an email
// address in the users table. It never carries an email attribute, so it stays
// out of the email GSI.
func emailGuardKey(email string) string {
	return "email#" + email
}
