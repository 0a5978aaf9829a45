package handler

import (
	"net/http"

	"GoDrive/internal/dto"
	"GoDrive/internal/service"
	"GoDrive/model"
	"GoDrive/utils"

	"github.com/gin-gonic/gin"
)

// Register creates a user account.
func Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	user := &model.User{
		UserName: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}
	if err := service.CreateUser(user); err != nil {
		utils.Fail(c, http.StatusConflict, err)
		return
	}
	utils.Success(c, gin.H{"id": user.ID, "username": user.UserName})
}

// Login verifies credentials and issues a token.
func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	if err := service.CheckPassword(req.Username, req.Password); err != nil {
		utils.Fail(c, http.StatusUnauthorized, err)
		return
	}
	user, err := service.FindUserByName(req.Username)
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, err)
		return
	}
	token, err := utils.GenerateToken(user.ID, user.UserName)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, err)
		return
	}
	utils.Success(c, gin.H{"token": token, "username": user.UserName})
}
