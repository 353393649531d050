// Package httpapi exposes the planner sync service over REST.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/selfplanner/internal/logging"
	"github.com/dmitrijs2005/selfplanner/internal/server/auth"
	"github.com/dmitrijs2005/selfplanner/internal/server/models"
	"github.com/dmitrijs2005/selfplanner/internal/server/observability"
	"github.com/dmitrijs2005/selfplanner/internal/server/repo/postgres"
)

// authTokenHeader carries the session token of a successful login. The
// response body stays the bare user record the client stores locally.
const authTokenHeader = "X-Auth-Token"

// UserStore is the slice of the users repository the handlers use.
type UserStore interface {
	GetByCredentials(ctx context.Context, email, password string) (models.User, error)
	Upsert(ctx context.Context, u models.User) (models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// PlannerStore is the slice of the planner repository the handlers use.
type PlannerStore interface {
	SaveDay(ctx context.Context, userID, day string, doc json.RawMessage) error
	GetAllForUser(ctx context.Context, userID string) (map[string]json.RawMessage, error)
}

type Handler struct {
	users    UserStore
	planner  PlannerStore
	log      logging.Logger
	prom     *observability.Prom
	secret   []byte
	tokenTTL time.Duration
}

func NewHandler(users UserStore, planner PlannerStore, log logging.Logger, prom *observability.Prom, secret []byte, tokenTTL time.Duration) *Handler {
	return &Handler{
		users:    users,
		planner:  planner,
		log:      log,
		prom:     prom,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Login authenticates by exact email and password match and responds
// with the stored user record. A fresh session token rides along in a
// response header.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondBadRequest(c, "email and password are required", nil)
		return
	}

	user, err := h.users.GetByCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			RespondUnauthorized(c, "invalid email or password")
			return
		}
		h.log.Error(c.Request.Context(), "login failed", "err", err)
		RespondInternal(c, "login failed")
		return
	}

	token, err := auth.GenerateToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		h.log.Error(c.Request.Context(), "token generation failed", "err", err)
		RespondInternal(c, "login failed")
		return
	}

	c.Header(authTokenHeader, token)
	c.JSON(http.StatusOK, user)
}

// Sync accepts a client's full dataset: the account record plus every
// stored day. The account is upserted first so days reference a known
// user; each day then replaces the stored copy wholesale.
func (h *Handler) Sync(c *gin.Context) {
	var payload models.SyncPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondBadRequest(c, "invalid request body", nil)
		return
	}
	if payload.User.Email == "" || payload.User.Password == "" {
		RespondBadRequest(c, "user email and password are required", nil)
		return
	}

	ctx := c.Request.Context()

	user, err := h.users.Upsert(ctx, payload.User)
	if err != nil {
		h.syncResult("error")
		h.log.Error(ctx, "sync user upsert failed", "err", err)
		RespondInternal(c, "sync failed")
		return
	}

	for day, doc := range payload.Planner {
		if err := h.planner.SaveDay(ctx, user.ID, day, doc); err != nil {
			h.syncResult("error")
			h.log.Error(ctx, "sync day save failed", "day", day, "err", err)
			RespondInternal(c, "sync failed")
			return
		}
	}

	h.syncResult("ok")
	h.log.Info(ctx, "dataset synced", "user", user.ID, "days", len(payload.Planner))
	c.JSON(http.StatusOK, gin.H{"status": "ok", "days": len(payload.Planner)})
}

// GetPlanner returns every stored day of the account keyed by date.
func (h *Handler) GetPlanner(c *gin.Context) {
	userID := c.Param("userID")
	ctx := c.Request.Context()

	exists, err := h.users.Exists(ctx, userID)
	if err != nil {
		h.log.Error(ctx, "planner lookup failed", "err", err)
		RespondInternal(c, "planner lookup failed")
		return
	}
	if !exists {
		RespondNotFound(c, "unknown user")
		return
	}

	planner, err := h.planner.GetAllForUser(ctx, userID)
	if err != nil {
		h.log.Error(ctx, "planner lookup failed", "err", err)
		RespondInternal(c, "planner lookup failed")
		return
	}
	c.JSON(http.StatusOK, planner)
}

func (h *Handler) syncResult(status string) {
	if h.prom != nil {
		h.prom.SyncPushesTotal.WithLabelValues(status).Inc()
	}
}
