package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jnitin/flask-catalog/internal/middleware"
	"github.com/jnitin/flask-catalog/internal/service"
)

// CreateUser registers a new account. It is the only gated route open to
// anonymous callers.
func (h HandlerSet) CreateUser(c *gin.Context) {
	var payload userPayload
	if !bindPayload(c, &payload) {
		return
	}
	if payload.Email == nil || payload.Password == nil || payload.FirstName == nil || payload.LastName == nil {
		badRequest(c, "Must include email, password, first_name and last_name fields")
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Email:     *payload.Email,
		Password:  *payload.Password,
		FirstName: *payload.FirstName,
		LastName:  *payload.LastName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.renderCreated(c, c.FullPath()+account.ID, newUserResource(account))
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	accounts, err := h.accounts.List(c.Request.Context(), middleware.CurrentIdentity(c), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newUserResources(accounts))
}

func (h HandlerSet) GetUser(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newUserResource(account))
}

func (h HandlerSet) UpdateUser(c *gin.Context) {
	var payload userPayload
	if !bindPayload(c, &payload) {
		return
	}
	id := c.Param("id")
	if payload.ID != "" && payload.ID != id {
		badRequest(c, "Resource id does not match the URL")
		return
	}
	if payload.Email != nil || payload.Password != nil {
		badRequest(c, "Use the email and password endpoints to change credentials")
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, service.UpdateAccountInput{
		FirstName:     payload.FirstName,
		LastName:      payload.LastName,
		ProfilePicURL: payload.ProfilePicURL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newUserResource(account))
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type assignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h HandlerSet) AssignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	account, err := h.accounts.AssignRole(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newUserResource(account))
}

func (h HandlerSet) Unblock(c *gin.Context) {
	if _, err := h.accounts.Unblock(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User account successfully unblocked"})
}
