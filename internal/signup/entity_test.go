// AngelaMos | 2026
// entity_test.go

package signup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignupSessionExpired(t *testing.T) {
	expiry := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	session := &SignupSession{ExpiresUTC: expiry}

	assert.False(t, session.Expired(expiry.Add(-time.Second)))
	assert.True(t, session.Expired(expiry), "expired at the exact expiry instant")
	assert.True(t, session.Expired(expiry.Add(time.Second)))
}
