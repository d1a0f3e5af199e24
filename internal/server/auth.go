package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/shared"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// AnonymousHandler mints anonymous sessions. A caller presenting a token signed by this server,
// even an expired one, keeps its uid.
type AnonymousHandler struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

func NewAnonymousHandler(secret []byte, ttl time.Duration, now func() time.Time, logger *log.Logger) *AnonymousHandler {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &AnonymousHandler{secret: secret, ttl: ttl, now: now, logger: logger}
}

func (h *AnonymousHandler) Routes() []string {
	return []string{"POST " + auth.AnonymousPath}
}

func (h *AnonymousHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := ""
	if token, ok := bearerToken(r); ok {
		if prev, err := auth.ParseExpiredToken(token, h.secret); err == nil {
			uid = prev
		} else {
			h.logger.Debug("ignoring unusable previous token", "err", err)
		}
	}
	renewed := uid != ""
	if !renewed {
		uid = shared.GenerateID()
	}

	token, expires, err := auth.IssueToken(uid, h.secret, h.ttl, h.now())
	if err != nil {
		h.logger.Error("failed to issue token", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.logger.Info("anonymous session issued", "uid", uid, "renewed", renewed)
	writeJSON(w, http.StatusOK, auth.Credentials{UID: uid, Token: token, ExpiresAt: expires})
}
