package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	"github.com/oksasatya/prison-staff-admin/pkg/response"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

// AccountManager is the account lifecycle as seen by HTTP; *application.AccountService implements it.
type AccountManager interface {
	Create(ctx context.Context, actor entity.Actor, role string, fields map[string]string) (*entity.User, string, error)
	Update(ctx context.Context, actor entity.Actor, role, id string, fields map[string]string) (*entity.User, string, error)
	ToggleStatus(ctx context.Context, actor entity.Actor, role, id string) (*entity.User, string, error)
	ResetCredentials(ctx context.Context, actor entity.Actor, role, id string) (*entity.User, string, error)
	Get(ctx context.Context, actor entity.Actor, role, id string) (*entity.User, error)
	List(ctx context.Context, actor entity.Actor, role, search string, page int) (application.Page[entity.User], error)
	Search(ctx context.Context, actor entity.Actor, role, q string, size int) ([]map[string]any, error)
}

// AccountHandler serves one personnel role, e.g. /directors or /wards.
type AccountHandler struct {
	Svc    AccountManager
	Role   string
	Logger *logrus.Logger
}

func NewAccountHandler(svc AccountManager, role string, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Role: role, Logger: logger}
}

type accountRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Birthdate     string `json:"birthdate"`
	PersonalPhone string `json:"personal_phone"`
	HomePhone     string `json:"home_phone"`
	Address       string `json:"address"`
}

func (r accountRequest) fields() map[string]string {
	return map[string]string{
		application.FieldFirstName:     r.FirstName,
		application.FieldLastName:      r.LastName,
		application.FieldUsername:      r.Username,
		application.FieldEmail:         r.Email,
		application.FieldBirthdate:     r.Birthdate,
		application.FieldPersonalPhone: r.PersonalPhone,
		application.FieldHomePhone:     r.HomePhone,
		application.FieldAddress:       r.Address,
	}
}

func (h *AccountHandler) bind(c *gin.Context) (map[string]string, bool) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		return nil, false
	}
	return req.fields(), true
}

func (h *AccountHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	p, err := h.Svc.List(c.Request.Context(), actorFrom(c), h.Role, c.Query("search"), page)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	items := make([]UserResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, toUserResponse(&p.Items[i]))
	}
	response.Success(c, http.StatusOK, items, "", gin.H{
		"page":      p.Page,
		"per_page":  p.PerPage,
		"total":     p.Total,
		"last_page": p.LastPage,
		"search":    c.Query("search"),
	})
}

func (h *AccountHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), actorFrom(c), h.Role, c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "", gin.H{"count": len(hits)})
}

func (h *AccountHandler) Create(c *gin.Context) {
	fields, ok := h.bind(c)
	if !ok {
		return
	}
	u, msg, err := h.Svc.Create(c.Request.Context(), actorFrom(c), h.Role, fields)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(u), msg, nil)
}

func (h *AccountHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), actorFrom(c), h.Role, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "", nil)
}

func (h *AccountHandler) Update(c *gin.Context) {
	fields, ok := h.bind(c)
	if !ok {
		return
	}
	u, msg, err := h.Svc.Update(c.Request.Context(), actorFrom(c), h.Role, c.Param("id"), fields)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), msg, nil)
}

// ToggleStatus answers DELETE: accounts are deactivated, never removed.
func (h *AccountHandler) ToggleStatus(c *gin.Context) {
	u, msg, err := h.Svc.ToggleStatus(c.Request.Context(), actorFrom(c), h.Role, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), msg, nil)
}

func (h *AccountHandler) ResetCredentials(c *gin.Context) {
	u, msg, err := h.Svc.ResetCredentials(c.Request.Context(), actorFrom(c), h.Role, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), msg, nil)
}
