package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"socialshop/internal/auth"
	"socialshop/internal/checkout"
	"socialshop/internal/domain"
	"socialshop/internal/service/account"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.deps.Accounts.Signup(c.Request.Context(), account.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": p})
}

// token logs a profile in. When the request carries a guest token the guest
// cart is merged into the profile cart and the guest token is revoked.
func (h *handlers) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "username and password required")
		return
	}
	ctx := c.Request.Context()
	p, access, refresh, err := h.deps.Accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    h.deps.Accounts.AccessTTLSeconds(),
		Profile:      p,
	}
	if guestID, ok := auth.GuestID(ctx); ok {
		sess, err := h.deps.Sessions.Adopt(auth.GuestSession(guestID), auth.ProfileSession(p.ID))
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			// the guest cart and token stay usable until the order settles
			h.logger.Info("guest cart adoption deferred, order in flight", zap.String("profile_id", p.ID))
			c.JSON(http.StatusOK, resp)
			return
		}
		if err == nil {
			resp.AdoptedLines = len(sess.Store.Lines())
			h.logger.Info("guest cart adopted on login", zap.String("profile_id", p.ID))
		}
		if gt := strings.TrimSpace(c.GetHeader(guestTokenHeader)); gt != "" {
			h.deps.Guests.Revoke(gt)
		} else if bt := bearerToken(c.GetHeader("Authorization")); bt != "" {
			h.deps.Guests.Revoke(bt)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) guest(c *gin.Context) {
	access, guestID, err := h.deps.Guests.Issue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   h.deps.Guests.AccessTTLSeconds(),
		GuestID:     guestID,
	})
}

func (h *handlers) me(c *gin.Context) {
	v, ok := c.Get(profileCtxKey)
	p, _ := v.(*domain.Profile)
	if !ok || p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}
