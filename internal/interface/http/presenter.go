package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	"github.com/oksasatya/prison-staff-admin/internal/interface/middleware"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
	"github.com/oksasatya/prison-staff-admin/pkg/response"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

// UserResponse is the public shape of an account; the password hash never leaves the service.
type UserResponse struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	FullName      string    `json:"full_name"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Birthdate     string    `json:"birthdate"`
	PersonalPhone string    `json:"personal_phone"`
	HomePhone     string    `json:"home_phone"`
	Address       string    `json:"address"`
	State         bool      `json:"state"`
	Status        string    `json:"status"`
	AvatarURL     string    `json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toUserResponse(u *entity.User) UserResponse {
	birthdate := u.Birthdate
	if d, err := helpers.ChangeDateFormat(u.Birthdate, helpers.ISODateLayout, helpers.DayMonthYearLayout); err == nil {
		birthdate = d
	}
	return UserResponse{
		ID:            u.ID,
		Role:          u.RoleName,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		FullName:      u.FullName(),
		Username:      u.Username,
		Email:         u.Email,
		Birthdate:     birthdate,
		PersonalPhone: u.PersonalPhone,
		HomePhone:     u.HomePhone,
		Address:       u.Address,
		State:         u.State,
		Status:        u.StateLabel(),
		AvatarURL:     u.AvatarURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func actorFrom(c *gin.Context) entity.Actor {
	return entity.Actor{
		UserID:   c.GetString(middleware.CtxUserID),
		Username: c.GetString(middleware.CtxUserName),
		Role:     c.GetString(middleware.CtxUserRole),
	}
}

// writeError maps service errors to status codes; unknown errors are logged and hidden.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *validation.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", ve.Details())
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound), errors.Is(err, application.ErrRoleNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrUserInactive):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
