package jwttoken

import (
	"vms/internal/platform/middleware"
	dErrors "vms/pkg/domain-errors"
)

// SessionValidator exposes JWTService to the auth middleware, which only
// needs the acting volunteer and the session.
type SessionValidator struct {
	service *JWTService
}

func NewSessionValidator(service *JWTService) *SessionValidator {
	return &SessionValidator{service: service}
}

func (v *SessionValidator) ValidateToken(token string) (*middleware.SessionClaims, error) {
	claims, err := v.service.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.VolunteerID()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &middleware.SessionClaims{VolunteerID: id, SessionID: claims.SessionID}, nil
}
