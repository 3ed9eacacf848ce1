package api

import (
	"net/http" // HTTP status codes
	"time"     // Rating timestamps

	"store_rating/internal/middleware" // Claims access
	"store_rating/internal/repository" // Filters and rows
	"store_rating/internal/service"    // Business logic

	"github.com/gin-gonic/gin" // Gin web framework
)

// RateRequest is the rating submission body
type RateRequest struct {
	StoreID uint    `json:"storeId"` // Store being rated
	Rating  int     `json:"rating"`  // 1 to 5
	Comment *string `json:"comment"` // Optional free text
}

// UserRating is the caller's own rating of a store
type UserRating struct {
	Rating  int     `json:"rating"`  // Submitted rating
	Comment *string `json:"comment"` // Submitted comment
}

// StoreForUserResponse is one row of the normal user store list
type StoreForUserResponse struct {
	ID            uint        `json:"id"`            // Store ID
	Name          string      `json:"name"`          // Store name
	Address       *string     `json:"address"`       // Store address
	AverageRating float64     `json:"averageRating"` // Mean of all ratings, 0 when unrated
	TotalRatings  int64       `json:"totalRatings"`  // Number of ratings
	UserRating    *UserRating `json:"userRating"`    // Caller's rating or null
}

// OwnerStoreResponse is the store block of the owner dashboard
type OwnerStoreResponse struct {
	ID            uint    `json:"id"`            // Store ID
	Name          string  `json:"name"`          // Store name
	Address       *string `json:"address"`       // Store address
	TotalRatings  int64   `json:"totalRatings"`  // Number of ratings
	AverageRating float64 `json:"averageRating"` // Rounded to two decimals
}

// OwnerRatingResponse is one rating on the owner's store
type OwnerRatingResponse struct {
	ID        uint      `json:"id"`        // Rating ID
	StoreID   uint      `json:"storeId"`   // Rated store
	Rating    int       `json:"rating"`    // 1 to 5
	Comment   *string   `json:"comment"`   // Optional comment
	CreatedAt time.Time `json:"createdAt"` // First submission time
	UserName  string    `json:"userName"`  // Rating author
}

// SubmitRatingHandler creates or updates the caller's rating of a store
func SubmitRatingHandler(ratings *service.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RateRequest
		if !bindJSON(c, &req) {
			return
		}
		claims := middleware.ClaimsFrom(c) // Set by the guard
		res, err := ratings.Submit(c.Request.Context(), claims.UserID, req.StoreID, req.Rating, req.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		message := "Rating updated successfully"
		if res.Created {
			message = "Rating submitted successfully"
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// ListStoresForUserHandler lists every store with its average and the caller's rating
func ListStoresForUserHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.StoreFilter{
			Name:    c.Query("name"),    // Filter by name
			Address: c.Query("address"), // Filter by address
		}
		claims := middleware.ClaimsFrom(c)
		rows, err := reports.StoresForUser(c.Request.Context(), claims.UserID, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]StoreForUserResponse, len(rows))
		// Map rows to response format
		for i, row := range rows {
			resp[i] = StoreForUserResponse{
				ID:            row.ID,
				Name:          row.Name,
				Address:       row.Address,
				AverageRating: row.AverageRating,
				TotalRatings:  row.TotalRatings,
			}
			if row.UserRating != nil {
				resp[i].UserRating = &UserRating{Rating: *row.UserRating, Comment: row.UserComment}
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// OwnerDashboardHandler returns the owner's store with rating totals
func OwnerDashboardHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.ClaimsFrom(c)
		dash, err := reports.OwnerDashboard(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Store dashboard data fetched successfully",
			"store": OwnerStoreResponse{
				ID:            dash.Store.ID,
				Name:          dash.Store.Name,
				Address:       dash.Store.Address,
				TotalRatings:  dash.TotalRatings,
				AverageRating: dash.AverageRating,
			},
		})
	}
}

// OwnerRatingsHandler lists ratings on the owner's stores, newest first
func OwnerRatingsHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.ClaimsFrom(c)
		rows, err := reports.OwnerRatings(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]OwnerRatingResponse, len(rows))
		for i, row := range rows {
			resp[i] = OwnerRatingResponse{
				ID:        row.ID,
				StoreID:   row.StoreID,
				Rating:    row.Rating,
				Comment:   row.Comment,
				CreatedAt: row.CreatedAt,
				UserName:  row.UserName,
			}
		}
		c.JSON(http.StatusOK, gin.H{"ratings": resp})
	}
}

// OwnerAverageRatingHandler returns the mean rating across the owner's stores
func OwnerAverageRatingHandler(reports *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.ClaimsFrom(c)
		avg, err := reports.OwnerAverage(c.Request.Context(), claims.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"averageRating": avg})
	}
}
