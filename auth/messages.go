package auth

// Provider error codes surfaced by the identity provider's sign-in flow.
const (
	CodeInvalidEmail      = "auth/invalid-email"
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeNetworkFailed     = "auth/network-request-failed"
)

const (
	msgBadCredentials = "Invalid login credentials, please check your password and email."
	msgNetwork        = "An error has occurred, please check your email and password again. " +
		"If the error persists, please contact Customer Support"
	msgUnexpected = "An unexpected error occurred. Please contact customer support."
)

// Message maps a provider error code to the user-facing sign-in message.
// Unrecognized codes fall back to the generic contact-support message.
func Message(code string) string {
	switch code {
	case CodeInvalidEmail, CodeUserNotFound, CodeWrongPassword, CodeInvalidCredential:
		return msgBadCredentials
	case CodeNetworkFailed:
		return msgNetwork
	default:
		return msgUnexpected
	}
}
