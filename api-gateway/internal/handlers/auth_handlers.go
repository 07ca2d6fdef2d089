package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	requestInfo := "SignUp"
	var reqBody credentials
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		log.Printf("API Gateway: Invalid input for %s: %v", requestInfo, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	session, err := h.svc.SignUp(c.Request.Context(), reqBody.Email, reqBody.Password)
	if err != nil {
		mapAuthError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: %s successful for user %s", requestInfo, session.User.ID)
	c.JSON(http.StatusCreated, session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	requestInfo := "Login"
	var reqBody credentials
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		log.Printf("API Gateway: Invalid input for %s: %v", requestInfo, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	session, err := h.svc.Login(c.Request.Context(), reqBody.Email, reqBody.Password)
	if err != nil {
		mapAuthError(c, err, requestInfo)
		return
	}

	log.Printf("API Gateway: %s successful for user %s", requestInfo, session.User.ID)
	c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFrom(c)
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		mapAuthError(c, err, "Logout")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) CurrentUser(c *gin.Context) {
	claims := claimsFrom(c)
	user, err := h.svc.CurrentUser(c.Request.Context(), claims.UserID())
	if err != nil {
		mapAuthError(c, err, "CurrentUser")
		return
	}
	c.JSON(http.StatusOK, user)
}
