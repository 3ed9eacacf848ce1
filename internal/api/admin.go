package api

import (
	"net/http" // HTTP status codes

	"store_rating/internal/domain"     // Roles
	"store_rating/internal/repository" // Filters
	"store_rating/internal/service"    // Business logic

	"github.com/gin-gonic/gin" // Gin web framework
)

// CacheHeader tells clients whether an admin listing was served from cache
const CacheHeader = "X-Cache"

// CreateStoreRequest is the admin add-store body
type CreateStoreRequest struct {
	Name    string     `json:"name" binding:"max=191"`                  // Required store name
	Email   string     `json:"email" binding:"omitempty,email,max=191"` // Optional contact email
	Address string     `json:"address" binding:"max=400"`               // Optional address
	OwnerID optionalID `json:"owner_id"`                                // Optional store_owner user ID
}

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID      uint        `json:"id"`      // User ID
	Name    string      `json:"name"`    // Display name
	Email   string      `json:"email"`   // Login email
	Address string      `json:"address"` // Postal address
	Role    domain.Role `json:"role"`    // User role
}

// StoreAdminResponse represents a store with owner and average for admins
type StoreAdminResponse struct {
	ID           uint    `json:"id"`           // Store ID
	Name         string  `json:"name"`         // Store name
	Email        *string `json:"email"`        // Contact email
	Address      *string `json:"address"`      // Store address
	OwnerID      *uint   `json:"owner_id"`     // Owner user ID
	OwnerName    *string `json:"owner_name"`   // Owner display name
	AvgRating    float64 `json:"avgRating"`    // Mean rating, 0 when unrated
	TotalRatings int64   `json:"totalRatings"` // Number of ratings
}

// AddUserHandler lets an admin create an account with any role
func AddUserHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := auth.CreateUser(c.Request.Context(), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User added successfully", "userId": user.ID})
	}
}

// AddStoreHandler lets an admin create a store
func AddStoreHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateStoreRequest
		if !bindJSON(c, &req) {
			return
		}
		store, err := stores.CreateStore(c.Request.Context(), service.CreateStoreInput{
			Name:    req.Name,
			Email:   req.Email,
			Address: req.Address,
			OwnerID: req.OwnerID.Value,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Store added successfully", "storeId": store.ID})
	}
}

// DashboardStatsHandler returns user, store and rating totals
func DashboardStatsHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := reports.DashboardStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"totalUsers":   stats.TotalUsers,   // Number of users
			"totalStores":  stats.TotalStores,  // Number of stores
			"totalRatings": stats.TotalRatings, // Number of ratings
		})
	}
}

// ListUsersHandler returns users filtered by name, email, address and role
func ListUsersHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.UserFilter{
			Name:    c.Query("name"),              // Substring
			Email:   c.Query("email"),             // Substring
			Address: c.Query("address"),           // Substring
			Role:    domain.Role(c.Query("role")), // Exact
		}
		users, cached, err := reports.ListUsers(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]UserAdminResponse, len(users))
		// Map users to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:      u.ID,      // User ID
				Name:    u.Name,    // Display name
				Email:   u.Email,   // Login email
				Address: u.Address, // Postal address
				Role:    u.Role,    // User role
			}
		}
		setCacheHeader(c, cached)
		c.JSON(http.StatusOK, resp)
	}
}

// ListStoresHandler returns stores with owner name and average rating
func ListStoresHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.StoreFilter{
			Name:    c.Query("name"),
			Email:   c.Query("email"),
			Address: c.Query("address"),
		}
		rows, cached, err := reports.ListStores(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]StoreAdminResponse, len(rows))
		for i, row := range rows {
			resp[i] = StoreAdminResponse{
				ID:           row.ID,
				Name:         row.Name,
				Email:        row.Email,
				Address:      row.Address,
				OwnerID:      row.OwnerID,
				OwnerName:    row.OwnerName,
				AvgRating:    row.AverageRating,
				TotalRatings: row.TotalRatings,
			}
		}
		setCacheHeader(c, cached)
		c.JSON(http.StatusOK, resp)
	}
}

func setCacheHeader(c *gin.Context, hit bool) {
	if hit {
		c.Header(CacheHeader, "HIT")
		return
	}
	c.Header(CacheHeader, "MISS")
}
