package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"roadtrip/internal/http/middleware"
)

func newTestRouter(secret string) (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logging(logger), middleware.Auth(secret))
	r.GET("/api/trips/:id/route", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString(middleware.SubjectKey)})
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r, logs
}

func do(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestAuth(t *testing.T) {
	const secret = "s3cret"
	valid := jwt.RegisteredClaims{Subject: "traveller-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	expired := jwt.RegisteredClaims{Subject: "traveller-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}
	noExpiry := jwt.RegisteredClaims{Subject: "traveller-1"}

	tests := []struct {
		name    string
		secret  string
		header  string
		want    int
		subject string
	}{
		{name: "disabled", secret: "", header: "", want: http.StatusOK},
		{name: "missing header", secret: secret, header: "", want: http.StatusUnauthorized},
		{name: "garbage", secret: secret, header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", secret: secret, header: "Basic " + sign(t, jwt.SigningMethodHS256, []byte(secret), valid), want: http.StatusUnauthorized},
		{name: "wrong key", secret: secret, header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), valid), want: http.StatusUnauthorized},
		{name: "wrong alg", secret: secret, header: "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), valid), want: http.StatusUnauthorized},
		{name: "expired", secret: secret, header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), expired), want: http.StatusUnauthorized},
		{name: "no expiry", secret: secret, header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), noExpiry), want: http.StatusUnauthorized},
		{name: "valid", secret: secret, header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), valid), want: http.StatusOK, subject: "traveller-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(tt.secret)
			w := do(r, "/api/trips/t1/route", tt.header)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"subject":"`+tt.subject+`"}`, w.Body.String())
			}
		})
	}
}

func TestLoggingRecordsRequest(t *testing.T) {
	r, logs := newTestRouter("")
	do(r, "/api/trips/t1/route", "")

	entries := logs.FilterMessage("http: request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "/api/trips/:id/route", fields["path"])
		assert.Equal(t, "t1", fields["trip_id"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	}
}

func TestLoggingRecordsSubject(t *testing.T) {
	r, logs := newTestRouter("s3cret")
	token := sign(t, jwt.SigningMethodHS256, []byte("s3cret"), jwt.RegisteredClaims{
		Subject:   "traveller-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	do(r, "/api/trips/t1/route", "Bearer "+token)

	entries := logs.FilterMessage("http: request").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "traveller-7", entries[0].ContextMap()["subject"])
	}
}

func TestRecoveryReturns500(t *testing.T) {
	r, logs := newTestRouter("")
	w := do(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("http: panic recovered").Len())
}
