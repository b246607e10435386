package component

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationError_Expired(t *testing.T) {
	v := VerificationError("expired")

	assert.True(t, strings.HasPrefix(v.Message, "The verification link has expired"))
	assert.True(t, v.ShowRegister)
	assert.False(t, v.LoginPrimary)
}

func TestVerificationError_AlreadyVerified(t *testing.T) {
	v := VerificationError("already-verified")

	assert.Equal(t, msgAlreadyVerified, v.Message)
	assert.False(t, v.ShowRegister)
	assert.True(t, v.ShowLogin)
	assert.True(t, v.LoginPrimary)
}

func TestVerificationError_Unknown(t *testing.T) {
	for _, reason := range []string{"", "banana", "EXPIRED-ish"} {
		v := VerificationError(reason)

		assert.Equal(t, msgDefault, v.Message, reason)
		assert.False(t, v.ShowRegister, reason)
		assert.False(t, v.ShowLogin, reason)
	}
}

func TestVerificationError_AllReasonsDistinct(t *testing.T) {
	seen := map[string]string{}
	for _, reason := range []string{ReasonInvalid, ReasonExpired, ReasonAlreadyVerified, ReasonUserNotFound, ReasonServer, ""} {
		v := VerificationError(reason)
		assert.NotEmpty(t, v.Message)
		if prev, ok := seen[v.Message]; ok {
			t.Errorf("reasons %q and %q share a message", prev, reason)
		}
		seen[v.Message] = reason
		assert.Equal(t, PathHome, v.HomePath)
	}
}

func TestVerificationError_ServerHasNoActions(t *testing.T) {
	v := VerificationError(" Server ")

	assert.Equal(t, msgServer, v.Message)
	assert.False(t, v.ShowRegister)
	assert.False(t, v.ShowLogin)
}
