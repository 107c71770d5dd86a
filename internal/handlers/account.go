package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jnitin/flask-catalog/internal/middleware"
	"github.com/jnitin/flask-catalog/internal/service"
)

func (h HandlerSet) ResendConfirmation(c *gin.Context) {
	if err := h.accounts.ResendConfirmation(c.Request.Context(), middleware.CurrentIdentity(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "A new confirmation email has been sent."})
}

func (h HandlerSet) Confirm(c *gin.Context) {
	account, err := h.accounts.Confirm(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newUserResource(account))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), middleware.CurrentIdentity(c), service.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been updated."})
}

type changeEmailRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) RequestEmailChange(c *gin.Context) {
	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	err := h.accounts.RequestEmailChange(c.Request.Context(), middleware.CurrentIdentity(c), service.ChangeEmailInput{
		NewEmail: req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "An email with instructions to confirm your new email address has been sent."})
}

func (h HandlerSet) ChangeEmail(c *gin.Context) {
	account, err := h.accounts.ChangeEmail(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, newUserResource(account))
}

func (h HandlerSet) Invite(c *gin.Context) {
	if err := h.accounts.Invite(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("email")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "New user was invited by email."})
}

// CompleteInvitation registers the invited address carried by the token.
func (h HandlerSet) CompleteInvitation(c *gin.Context) {
	var payload userPayload
	if !bindPayload(c, &payload) {
		return
	}
	if payload.Password == nil || payload.FirstName == nil || payload.LastName == nil {
		badRequest(c, "Must include password, first_name and last_name fields")
		return
	}

	account, err := h.accounts.CompleteInvitation(c.Request.Context(), c.Param("token"), service.RegisterInput{
		Password:  *payload.Password,
		FirstName: *payload.FirstName,
		LastName:  *payload.LastName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderCreated(c, "/api/v1/users/"+account.ID, newUserResource(account))
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset always answers 202 so the response does not reveal
// whether the email is registered.
func (h HandlerSet) RequestPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.log.Error().Err(err).Msg("password reset request failed")
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "An email with instructions to reset your password has been sent."})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been updated."})
}
