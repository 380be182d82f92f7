package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"servicehub/config"
	"servicehub/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "oauth_state"
	googleUserInfo   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type GoogleOAuthHandler struct {
	cfg     *config.Config
	authSvc *service.AuthService
}

func NewGoogleOAuthHandler(cfg *config.Config, authSvc *service.AuthService) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{cfg: cfg, authSvc: authSvc}
}

func (h *GoogleOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.OAuth.GoogleClientID,
		ClientSecret: h.cfg.OAuth.GoogleClientSecret,
		RedirectURL:  h.cfg.OAuth.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *GoogleOAuthHandler) configured(c *gin.Context) bool {
	if h.cfg.OAuth.GoogleClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google OAuth not configured", "error": "unavailable"})
		return false
	}
	return true
}

// Redirect sends the user to the Google consent screen.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		writeError(c, "GoogleOAuthHandler.Redirect", err)
		return
	}
	state := hex.EncodeToString(buf)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.cfg.Server.Env == "production", true)
	c.Redirect(http.StatusFound, h.OAuth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline))
}

type googleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Callback exchanges the code, fetches the Google profile and signs the user in as a CLIENT.
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		badRequest(c, "invalid oauth state")
		return
	}
	code := c.Query("code")
	if code == "" {
		badRequest(c, "missing code")
		return
	}
	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		badRequest(c, "exchange failed")
		return
	}
	resp, err := conf.Client(ctx, tok).Get(googleUserInfo)
	if err != nil {
		writeError(c, "GoogleOAuthHandler.Callback", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"message": "failed to get user info", "error": "upstream"})
		return
	}
	var info googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" || info.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"message": "invalid user info", "error": "upstream"})
		return
	}
	u, tokens, isNew, err := h.authSvc.LoginWithGoogle(ctx, info.ID, info.Email, info.VerifiedEmail, info.Name, info.Picture)
	if err != nil {
		writeError(c, "GoogleOAuthHandler.Callback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"is_new":        isNew,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}
