package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = &models.User{ID: 42, Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("s3cr3t")

	token, err := m.Issue(testUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.FirstName)
	assert.Equal(t, "Lee", claims.LastName)
	assert.Equal(t, SessionTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_EmptyToken(t *testing.T) {
	_, err := NewManager("k").Verify("")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestVerify_Rejections(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	issuer := NewManager("k")
	issuer.now = fixedClock(issuedAt)
	valid, err := issuer.Issue(testUser)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
	})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1})
	noExpToken, err := noExp.SignedString([]byte("k"))
	require.NoError(t, err)

	noID := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour))},
	})
	noIDToken, err := noID.SignedString([]byte("k"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		now    time.Time
		token  string
	}{
		{name: "expired", secret: "k", now: issuedAt.Add(SessionTTL + time.Minute), token: valid},
		{name: "wrong secret", secret: "other", now: issuedAt.Add(time.Minute), token: valid},
		{name: "garbage", secret: "k", now: issuedAt, token: "not.a.jwt"},
		{name: "alg none", secret: "k", now: issuedAt, token: noneToken},
		{name: "no expiry", secret: "k", now: issuedAt, token: noExpToken},
		{name: "no user id", secret: "k", now: issuedAt, token: noIDToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.secret)
			m.now = fixedClock(tt.now)

			_, err := m.Verify(tt.token)
			require.ErrorIs(t, err, common.ErrInvalidToken)
			assert.NotErrorIs(t, err, common.ErrUnauthenticated)
		})
	}
}

func TestVerify_StillValidJustBeforeExpiry(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m := NewManager("k")
	m.now = fixedClock(issuedAt)
	token, err := m.Issue(testUser)
	require.NoError(t, err)

	m.now = fixedClock(issuedAt.Add(SessionTTL - time.Minute))
	_, err = m.Verify(token)
	require.NoError(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", want: "abc"},
		{header: "  Bearer   abc  ", want: "abc"},
		{header: "Basic dXNlcjpwYXNz", want: ""},
		{header: "Bearer", want: ""},
		{header: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BearerToken(tt.header), tt.header)
	}
}
