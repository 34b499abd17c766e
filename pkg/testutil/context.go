package testutil

import (
	"net/http"

	"vms/pkg/requestcontext"
)

// AsVolunteer puts the volunteer id into the request context the way the
// auth middleware does for a validated session.
func AsVolunteer(req *http.Request, volunteerID int64) *http.Request {
	return req.WithContext(requestcontext.WithVolunteerID(req.Context(), volunteerID))
}

// WithSession adds both the volunteer and the session id.
func WithSession(req *http.Request, volunteerID int64, sessionID string) *http.Request {
	ctx := requestcontext.WithVolunteerID(req.Context(), volunteerID)
	ctx = requestcontext.WithSessionID(ctx, sessionID)
	return req.WithContext(ctx)
}

// WithBearer sets the Authorization header.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
