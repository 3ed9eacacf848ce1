package api

import (
	"net/http" // HTTP status codes
	"time"     // Token expiry

	"store_rating/internal/domain"     // Roles
	"store_rating/internal/middleware" // Claims access
	"store_rating/internal/service"    // Business logic

	"github.com/gin-gonic/gin" // Gin web framework
)

// SignupRequest is the body of both signup endpoints and admin user creation
type SignupRequest struct {
	Name     string      `json:"name" binding:"max=60"`                   // Display name
	Email    string      `json:"email" binding:"omitempty,email,max=191"` // Login email
	Password string      `json:"password"`                                // Length checked in bytes by the service
	Address  string      `json:"address" binding:"max=400"`               // Postal address
	Role     domain.Role `json:"role" binding:"omitempty,role"`           // Optional outside admin creation
}

func (r SignupRequest) input() service.SignupInput {
	return service.SignupInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Address:  r.Address,
		Role:     r.Role,
	}
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email"`    // Login email
	Password string `json:"password"` // Plaintext password
}

// UpdatePasswordRequest is the password change body
type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword"` // Current password
	NewPassword string `json:"newPassword"` // Replacement password
}

// UserSummary is the public part of a user returned at login
type UserSummary struct {
	ID   uint        `json:"id"`   // User ID
	Name string      `json:"name"` // Display name
	Role domain.Role `json:"role"` // User role
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Message   string      `json:"message"`   // Human readable status
	Token     string      `json:"token"`     // Bearer token
	ExpiresAt time.Time   `json:"expiresAt"` // Absolute expiry
	User      UserSummary `json:"user"`      // Authenticated user
}

// RegisterNormalUserHandler registers a normaluser account from the public signup form
func RegisterNormalUserHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		if _, err := auth.RegisterNormalUser(c.Request.Context(), req.input()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// SignupHandler registers an account with an optional role
func SignupHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := auth.Signup(c.Request.Context(), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User registered successfully", "userId": user.ID})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, LoginResponse{
			Message:   "Login successful",
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
			User: UserSummary{
				ID:   res.User.ID,
				Name: res.User.Name,
				Role: res.User.Role,
			},
		})
	}
}

// UpdatePasswordHandler changes the caller's password
func UpdatePasswordHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		claims := middleware.ClaimsFrom(c) // Set by the guard
		if err := auth.UpdatePassword(c.Request.Context(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}

// LogoutHandler revokes the presented token
func LogoutHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}
