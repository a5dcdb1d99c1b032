package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"leasesync/internal/auth"
	"leasesync/internal/httpx"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string `json:"token"`
	ExpireAt string `json:"expireAt"`
	Username string `json:"username"`
}

// LoginHandler checks the admin credentials and returns a token
func LoginHandler(issuer *auth.Issuer, adminHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}

		if err := auth.CheckAdmin(adminHash, req.Username, req.Password); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
				return
			}
			httpx.FailErr(c, httpx.ErrInternalError("failed to verify credentials", err))
			return
		}

		token, expireAt, err := issuer.GenerateToken(req.Username)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
			return
		}

		httpx.OK(c, LoginResponse{
			Token:    token,
			ExpireAt: expireAt.Format(time.RFC3339),
			Username: req.Username,
		})
	}
}
