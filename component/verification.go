package component

import "strings"

// Navigation targets reachable from the static pages.
const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
)

// Verification failure reasons reported by the email-verification flow.
const (
	ReasonInvalid         = "invalid"
	ReasonExpired         = "expired"
	ReasonAlreadyVerified = "already-verified"
	ReasonUserNotFound    = "user-not-found"
	ReasonServer          = "server"
)

const (
	msgInvalid         = "The verification link is invalid. Please check that you copied the whole link, or register again to receive a new one."
	msgExpired         = "The verification link has expired. Verification links are valid for a limited time; please register again to receive a new one."
	msgAlreadyVerified = "Your email has already been verified. You can log in to your account."
	msgUserNotFound    = "We couldn't find an account for this verification link. Please register again."
	msgServer          = "Something went wrong on our end while verifying your email. Please try again later."
	msgDefault         = "We couldn't verify your email address. Please try again later."
)

// VerificationErrorView describes the email-verification error page.
type VerificationErrorView struct {
	Reason       string `json:"reason"`
	Message      string `json:"message"`
	ShowRegister bool   `json:"showRegister"`
	ShowLogin    bool   `json:"showLogin"`
	LoginPrimary bool   `json:"loginPrimary"`
	HomePath     string `json:"homePath"`
	LoginPath    string `json:"loginPath"`
	RegisterPath string `json:"registerPath"`
}

// VerificationError maps a reason code to its page. Unknown and empty reasons
// get the generic message with no follow-up actions.
func VerificationError(reason string) VerificationErrorView {
	v := VerificationErrorView{
		Reason:       strings.ToLower(strings.TrimSpace(reason)),
		HomePath:     PathHome,
		LoginPath:    PathLogin,
		RegisterPath: PathRegister,
	}
	switch v.Reason {
	case ReasonInvalid:
		v.Message = msgInvalid
		v.ShowRegister, v.ShowLogin = true, true
	case ReasonExpired:
		v.Message = msgExpired
		v.ShowRegister, v.ShowLogin = true, true
	case ReasonAlreadyVerified:
		v.Message = msgAlreadyVerified
		v.ShowLogin, v.LoginPrimary = true, true
	case ReasonUserNotFound:
		v.Message = msgUserNotFound
		v.ShowRegister = true
	case ReasonServer:
		v.Message = msgServer
	default:
		v.Message = msgDefault
	}
	return v
}
