package handlers

import (
	"net/http"
	"net/url"
	"time"

	"slotwise/models"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// oauthConfigFor returns the OAuth config for a connect/callback path
// parameter, or nil for unknown providers.
var oauthConfigFor func(provider string) *oauth2.Config

// RegisterOAuthConfigs injects the OAuth config lookup. Wired from main so
// handlers stay free of provider-specific imports.
func RegisterOAuthConfigs(lookup func(provider string) *oauth2.Config) {
	oauthConfigFor = lookup
}

// ConnectCalendarHandler answers GET /api/calendar/connect/:provider and
// redirects the provider into the OAuth consent screen. The state parameter
// is a short-lived signed token carrying the provider id, so the callback can
// trust it without server-side session state.
func (hb *HandlerBundle) ConnectCalendarHandler(c *gin.Context) {
	cfg := oauthConfigFor(c.Param("provider"))
	if cfg == nil {
		utils.JSONError(c, http.StatusBadRequest, "unknown calendar provider", c.Param("provider"))
		return
	}

	state, err := utils.GenerateToken(c.GetString("actorID"), "calendar-state", 10*time.Minute)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create state token", err.Error())
		return
	}

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	c.JSON(http.StatusOK, gin.H{"authUrl": authURL})
}

// CalendarCallbackHandler answers GET /api/calendar/callback/:provider. It
// exchanges the authorization code and stores the connection, replacing any
// previous one for the provider.
func (hb *HandlerBundle) CalendarCallbackHandler(c *gin.Context) {
	kind := c.Param("provider")
	cfg := oauthConfigFor(kind)
	if cfg == nil {
		utils.JSONError(c, http.StatusBadRequest, "unknown calendar provider", kind)
		return
	}

	providerID, role, err := utils.ExtractActorFromToken(c.Query("state"))
	if err != nil || role != "calendar-state" {
		utils.JSONError(c, http.StatusBadRequest, "invalid or expired state parameter", "")
		return
	}
	code := c.Query("code")
	if code == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing authorization code", "")
		return
	}

	token, err := cfg.Exchange(c.Request.Context(), code)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "oauth code exchange failed", err.Error())
		return
	}

	now := time.Now().UTC()
	conn := &models.CalendarConnection{
		ID:           uuid.New().String(),
		ProviderID:   providerID,
		Kind:         kind,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := hb.CalendarConns.Upsert(c.Request.Context(), conn); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store calendar connection", err.Error())
		return
	}

	hb.Logger.Info("calendar connected",
		zap.String("providerId", providerID), zap.String("kind", kind))
	c.JSON(http.StatusOK, gin.H{"connected": true, "kind": kind})
}

// SetFeedHandler answers POST /api/calendar/feed and subscribes the provider
// to a read-only ICS feed URL. Feed connections never receive mirrored events.
func (hb *HandlerBundle) SetFeedHandler(c *gin.Context) {
	var input struct {
		FeedURL string `json:"feedUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	u, err := url.Parse(input.FeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "feedUrl must be an http(s) URL")
		return
	}

	now := time.Now().UTC()
	conn := &models.CalendarConnection{
		ID:         uuid.New().String(),
		ProviderID: c.GetString("actorID"),
		Kind:       models.CalendarKindICSFeed,
		FeedURL:    input.FeedURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := hb.CalendarConns.Upsert(c.Request.Context(), conn); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store calendar connection", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "kind": models.CalendarKindICSFeed})
}

// GetCalendarConnectionHandler answers GET /api/calendar/connection. Token
// material never serializes.
func (hb *HandlerBundle) GetCalendarConnectionHandler(c *gin.Context) {
	conn, err := hb.CalendarConns.GetByProviderID(c.Request.Context(), c.GetString("actorID"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load calendar connection", err.Error())
		return
	}
	if conn == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "connection": conn})
}

// DisconnectCalendarHandler answers DELETE /api/calendar/connection.
func (hb *HandlerBundle) DisconnectCalendarHandler(c *gin.Context) {
	if err := hb.CalendarConns.Delete(c.Request.Context(), c.GetString("actorID")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to remove calendar connection", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": false})
}
