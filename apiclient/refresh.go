package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-storefront-client/guard"
	"github.com/jrsteele09/go-storefront-client/internal/metrics"
	"github.com/jrsteele09/go-storefront-client/users"
)

// Classifier maps a failed refresh call to *SessionExpiredError,
// *NoSessionError, or returns err unchanged for failures that say nothing
// about the session.
type Classifier func(err error) error

// DefaultClassifier treats a 400 or 401 saying the refresh token is missing
// as no session, and any other 401 or 403 envelope as an expired session.
func DefaultClassifier(err error) error {
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.StatusCode {
	case http.StatusBadRequest:
		if mentionsMissingToken(appErr.Message) {
			return &NoSessionError{Cause: err}
		}
	case http.StatusUnauthorized:
		if mentionsMissingToken(appErr.Message) {
			return &NoSessionError{Cause: err}
		}
		if appErr.Envelope != nil {
			return &SessionExpiredError{Cause: err}
		}
	case http.StatusForbidden:
		if appErr.Envelope != nil {
			return &SessionExpiredError{Cause: err}
		}
	}
	return err
}

func mentionsMissingToken(msg string) bool {
	msg = strings.ToLower(msg)
	if !strings.Contains(msg, "token") {
		return false
	}
	for _, hint := range []string{"missing", "not provided", "no refresh", "required", "not present"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

type refreshResponse struct {
	User *users.User `json:"user"`
}

// refreshSession is the refresh.Func run by the coordinator's leader. ctx is
// already detached from the caller that triggered it.
func (c *Client) refreshSession(ctx context.Context) error {
	c.logger.Info().Msg("Refreshing token...")

	env, _, err := c.send(ctx, http.MethodPost, c.refreshPath, nil, nil, uuid.New().String())
	if err == nil {
		var out refreshResponse
		if err = env.Decode(&out); err == nil && out.User == nil {
			err = fmt.Errorf("refresh response carried no user")
		}
		if err == nil {
			c.session.UpdateUser(ctx, out.User)
			metrics.RefreshTotal.WithLabelValues("success").Inc()
			c.logger.Info().Str("user_id", out.User.ID).Msg("Token refreshed")
			return nil
		}
	}

	classified := c.classify(err)
	c.logger.Warn().Err(classified).Msg("Refresh failed")

	var expired *SessionExpiredError
	var noSession *NoSessionError
	switch {
	case errors.As(classified, &expired):
		metrics.RefreshTotal.WithLabelValues("session_expired").Inc()
		c.session.Logout(ctx)
		c.redirectToLogin()
	case errors.As(classified, &noSession):
		metrics.RefreshTotal.WithLabelValues("no_session").Inc()
	default:
		metrics.RefreshTotal.WithLabelValues("error").Inc()
	}
	return classified
}

func (c *Client) redirectToLogin() {
	if c.nav == nil {
		return
	}
	current := c.nav.CurrentPath()
	if guard.IsPublicPage(current) || guard.IsLoginPage(current) {
		c.logger.Debug().Str("path", current).Msg("Session expired on a public page, staying")
		return
	}
	c.nav.Redirect(guard.LoginPath)
	metrics.RedirectsTotal.Inc()
	c.logger.Info().Str("from", current).Msg("Session expired, redirecting to login")
}
