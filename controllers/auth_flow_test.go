package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranqv/bookstore/models"
	"github.com/tranqv/bookstore/utils"
)

func TestRegisterAndLogin(t *testing.T) {
	_, _, router := newTestApp(t)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":     "alice@example.com",
		"password":  "secret123",
		"full_name": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data["token"])

	// Same email again conflicts
	w = doJSON(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":     "alice@example.com",
		"password":  "secret123",
		"full_name": "Alice Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.NotEmpty(t, resp.Data["token"])
}

func TestLoginLockout(t *testing.T) {
	db, _, router := newTestApp(t)
	user := createUser(t, db, "bob@example.com", "secret123", models.RoleCustomer)

	badLogin := func() (int, apiResponse) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "bob@example.com",
			"password": "wrong-password",
		})
		return w.Code, decode(t, w)
	}

	// First two failures count down the remaining attempts
	code, resp := badLogin()
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, resp.Message, "2 attempts remaining")

	_, resp = badLogin()
	assert.Contains(t, resp.Message, "1 attempts remaining")

	// Third failure locks the account
	code, resp = badLogin()
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, resp.Message, "Account locked")

	// The correct password is also rejected while locked
	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "bob@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w).Message, "temporarily locked")

	// An expired lock clears itself on the next attempt
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&user).Updates(map[string]interface{}{
		"locked_until": past,
	}).Error)

	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "bob@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.IsLocked)
	assert.Equal(t, 0, reloaded.FailedLoginAttempts)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	db, _, router := newTestApp(t)
	user := createUser(t, db, "carol@example.com", "secret123", models.RoleCustomer)
	require.NoError(t, db.Model(&user).Update("is_active", false).Error)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "carol@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w).Message, "deactivated")
}

func TestAuthMiddlewareRejectsAnonymous(t *testing.T) {
	_, _, router := newTestApp(t)

	w := doJSON(router, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetTokenSingleUse(t *testing.T) {
	db, cfg, router := newTestApp(t)
	user := createUser(t, db, "dave@example.com", "secret123", models.RoleCustomer)

	token, tokenHash, err := utils.GenerateResetToken()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(cfg.ResetTokenExpiry),
	}).Error)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/reset-password", "", gin.H{
		"token":        token,
		"new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// The new password works
	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "dave@example.com",
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Replaying the token fails
	w = doJSON(router, http.MethodPost, "/api/v1/auth/reset-password", "", gin.H{
		"token":        token,
		"new_password": "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "Invalid or expired token")
}

func TestPasswordResetExpiredToken(t *testing.T) {
	db, _, router := newTestApp(t)
	user := createUser(t, db, "erin@example.com", "secret123", models.RoleCustomer)

	token, tokenHash, err := utils.GenerateResetToken()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/reset-password", "", gin.H{
		"token":        token,
		"new_password": "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPasswordConstantResponse(t *testing.T) {
	db, _, router := newTestApp(t)
	createUser(t, db, "frank@example.com", "secret123", models.RoleCustomer)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/forgot-password", "", gin.H{
		"email": "frank@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	known := decode(t, w).Message

	w = doJSON(router, http.MethodPost, "/api/v1/auth/forgot-password", "", gin.H{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, known, decode(t, w).Message)
}
