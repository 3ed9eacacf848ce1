package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"store_rating/internal/dbtest"
	"store_rating/internal/domain"
	"store_rating/internal/repository"
	"store_rating/internal/service"
	"store_rating/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := dbtest.New(t)
	users := repository.NewUserRepository(db)
	stores := repository.NewStoreRepository(db)
	ratings := repository.NewRatingRepository(db)
	cache := utils.NewCache(rdb, time.Minute)
	revocations := utils.NewRevocationList(rdb)
	issuer, err := utils.NewTokenIssuer("api-test-secret", time.Hour)
	require.NoError(t, err)

	auth := service.NewAuthService(users, utils.NewPasswordHasher(bcrypt.MinCost), issuer, revocations, cache)
	router, err := NewRouter(Deps{
		DB:           db,
		Redis:        rdb,
		Issuer:       issuer,
		Revocations:  revocations,
		LoginLimiter: utils.NewFixedWindowLimiter(rdb, "test:login", 1000, time.Hour),
		Auth:         auth,
		Ratings:      service.NewRatingService(stores, ratings, cache),
		Stores:       service.NewStoreService(users, stores, cache),
		Reports:      service.NewReportService(users, stores, ratings, cache),
	})
	require.NoError(t, err)
	return &testServer{router: router, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// user creates an account with the given role and returns its id and a token
// user registers an account and logs it in. Admins cannot sign up
// publicly, so they are created through the service.
func (s *testServer) user(t *testing.T, name, email string, role domain.Role) (uint, string) {
	t.Helper()
	var id uint
	if role == domain.RoleAdmin {
		u, err := s.auth.CreateUser(context.Background(), service.SignupInput{
			Name: name, Email: email, Password: "secret123", Address: name + " lane", Role: role,
		})
		require.NoError(t, err)
		id = u.ID
	} else {
		w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
			"name": name, "email": email, "password": "secret123", "address": name + " lane", "role": role,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var signup struct {
			UserID uint `json:"userId"`
		}
		decode(t, w, &signup)
		id = signup.UserID
	}

	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login LoginResponse
	decode(t, w, &login)
	return id, login.Token
}

func (s *testServer) store(t *testing.T, adminToken, name string, ownerID uint) uint {
	t.Helper()
	body := gin.H{"name": name, "address": name + " square"}
	if ownerID != 0 {
		body["owner_id"] = ownerID
	}
	w := s.do(t, http.MethodPost, "/api/admin/stores", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		StoreID uint `json:"storeId"`
	}
	decode(t, w, &resp)
	return resp.StoreID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ann", "email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId"`)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var login LoginResponse
	decode(t, w, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, domain.RoleNormalUser, login.User.Role)
	assert.Equal(t, "Ann", login.User.Name)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "token")

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com"})
	assert.JSONEq(t, `{"error":"Email and password required"}`, w.Body.String())
}

func TestRegisterNormalUser(t *testing.T) {
	s := newTestServer(t)
	body := gin.H{"name": "Ann", "email": "a@x.com", "password": "pw", "address": "Elm St"}

	w := s.do(t, http.MethodPost, "/api/auth/signupbyuser", "", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/signupbyuser", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Email already registered"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/signupbyuser", "", gin.H{"name": "Bo", "email": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"All fields are required"}`, w.Body.String())
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ann", "email": "not-an-email", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"email must be a valid email address"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ann", "email": "a@x.com", "password": "pw", "role": "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid role"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request"}`, rec.Body.String())
}

func TestSignupCannotGrantAdmin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Mallory", "email": "m@x.com", "password": "pw", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Admin accounts can only be created by an admin"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "m@x.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, adminTok := s.user(t, "Root", "root@x.com", domain.RoleAdmin)
	w = s.do(t, http.MethodPost, "/api/admin/users", adminTok, gin.H{
		"name": "Second", "email": "second@x.com", "password": "pw", "address": "HQ", "role": "admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestMultibytePasswordOverByteLimit(t *testing.T) {
	s := newTestServer(t)
	// 40 characters, 80 bytes
	long := strings.Repeat("é", 40)

	w := s.do(t, http.MethodPost, "/api/auth/signupbyuser", "", gin.H{
		"name": "Ann", "email": "a@x.com", "password": long, "address": "Elm St",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password must be at most 72 bytes"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{"name": "Ann", "email": "a@x.com", "password": long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password must be at most 72 bytes"}`, w.Body.String())

	_, tok := s.user(t, "Bo", "b@x.com", domain.RoleNormalUser)
	w = s.do(t, http.MethodPut, "/api/auth/update-password", tok, gin.H{"oldPassword": "secret123", "newPassword": long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password must be at most 72 bytes"}`, w.Body.String())
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.user(t, "Root", "root@x.com", domain.RoleAdmin)
	_, userTok := s.user(t, "Ann", "a@x.com", domain.RoleNormalUser)
	_, ownerTok := s.user(t, "Olga", "o@x.com", domain.RoleStoreOwner)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/stores"},
		{http.MethodGet, "/api/admin/dashboard-stats"},
		{http.MethodPost, "/api/admin/users"},
		{http.MethodPost, "/api/admin/stores"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, s.do(t, rt.method, rt.path, "", gin.H{}).Code)
			assert.Equal(t, http.StatusForbidden, s.do(t, rt.method, rt.path, userTok, gin.H{}).Code)
			assert.Equal(t, http.StatusForbidden, s.do(t, rt.method, rt.path, ownerTok, gin.H{}).Code)
		})
	}

	w := s.do(t, http.MethodGet, "/api/admin/dashboard-stats", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalUsers":3,"totalStores":0,"totalRatings":0}`, w.Body.String())
}

func TestAdminListUsersFilterByRole(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.user(t, "Root", "root@x.com", domain.RoleAdmin)
	s.user(t, "Zara", "z@x.com", domain.RoleStoreOwner)
	s.user(t, "Ann", "a@x.com", domain.RoleNormalUser)
	s.user(t, "Mia", "m@x.com", domain.RoleStoreOwner)

	w := s.do(t, http.MethodGet, "/api/admin/users?role=store_owner", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
	var users []UserAdminResponse
	decode(t, w, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "Mia", users[0].Name)
	assert.Equal(t, "Zara", users[1].Name)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodGet, "/api/admin/users?role=store_owner", adminTok, nil)
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))

	w = s.do(t, http.MethodGet, "/api/admin/users?email=a%40x", adminTok, nil)
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Name)
}

func TestAdminCreateUserAndStore(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.user(t, "Root", "root@x.com", domain.RoleAdmin)

	w := s.do(t, http.MethodPost, "/api/admin/users", adminTok, gin.H{
		"name": "Olga", "email": "o@x.com", "password": "pw", "address": "Oak", "role": "store_owner",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		UserID uint `json:"userId"`
	}
	decode(t, w, &created)

	w = s.do(t, http.MethodPost, "/api/admin/users", adminTok, gin.H{
		"name": "Olga", "email": "o@x.com", "password": "pw", "address": "Oak", "role": "store_owner",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/stores", adminTok, gin.H{"email": "s@x.com"})
	assert.JSONEq(t, `{"error":"Store name is required"}`, w.Body.String())

	// Form clients send the owner as a string
	w = s.do(t, http.MethodPost, "/api/admin/stores", adminTok, gin.H{"name": "Bakery", "owner_id": fmt.Sprint(created.UserID)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/admin/stores", adminTok, gin.H{"name": "Kiosk", "owner_id": ""})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/admin/stores", adminTok, gin.H{"name": "Ghost", "owner_id": 9999})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/stores?name=bak", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stores []StoreAdminResponse
	decode(t, w, &stores)
	require.Len(t, stores, 1)
	require.NotNil(t, stores[0].OwnerName)
	assert.Equal(t, "Olga", *stores[0].OwnerName)
	assert.Equal(t, 0.0, stores[0].AvgRating)
}

func TestRatingFlow(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.user(t, "Root", "root@x.com", domain.RoleAdmin)
	ownerID, ownerTok := s.user(t, "Olga", "o@x.com", domain.RoleStoreOwner)
	_, annTok := s.user(t, "Ann", "a@x.com", domain.RoleNormalUser)
	_, boTok := s.user(t, "Bo", "b@x.com", domain.RoleNormalUser)
	storeID := s.store(t, adminTok, "Bakery", ownerID)

	// Owner dashboard before any rating
	w := s.do(t, http.MethodGet, "/api/stores/dashboard", ownerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Store OwnerStoreResponse `json:"store"`
	}
	decode(t, w, &dash)
	assert.Equal(t, storeID, dash.Store.ID)
	assert.Equal(t, int64(0), dash.Store.TotalRatings)
	assert.Equal(t, 0.0, dash.Store.AverageRating)

	w = s.do(t, http.MethodPost, "/api/stores/rate", annTok, gin.H{"storeId": storeID, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Rating must be between 1 and 5"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/stores/rate", annTok, gin.H{"storeId": storeID + 50, "rating": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/stores/rate", ownerTok, gin.H{"storeId": storeID, "rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/stores/rate", annTok, gin.H{"storeId": storeID, "rating": 5, "comment": "lovely"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Rating submitted successfully"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/stores/rate", annTok, gin.H{"storeId": storeID, "rating": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Rating updated successfully"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/stores/rate", boTok, gin.H{"storeId": storeID, "rating": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/stores/all", annTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []StoreForUserResponse
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 2.5, list[0].AverageRating)
	assert.Equal(t, int64(2), list[0].TotalRatings)
	require.NotNil(t, list[0].UserRating)
	assert.Equal(t, 4, list[0].UserRating.Rating)
	assert.Nil(t, list[0].UserRating.Comment)

	w = s.do(t, http.MethodGet, "/api/stores/ratings", ownerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ratings struct {
		Ratings []OwnerRatingResponse `json:"ratings"`
	}
	decode(t, w, &ratings)
	require.Len(t, ratings.Ratings, 2)

	w = s.do(t, http.MethodGet, "/api/stores/average-rating", ownerTok, nil)
	assert.JSONEq(t, `{"averageRating":2.5}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/admin/dashboard-stats", adminTok, nil)
	assert.JSONEq(t, `{"totalUsers":4,"totalStores":1,"totalRatings":2}`, w.Body.String())
}

func TestOwnerWithoutStore(t *testing.T) {
	s := newTestServer(t)
	_, ownerTok := s.user(t, "Olga", "o@x.com", domain.RoleStoreOwner)

	w := s.do(t, http.MethodGet, "/api/stores/dashboard", ownerTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No store found for this owner"}`, w.Body.String())
}

func TestUpdatePasswordAndLogout(t *testing.T) {
	s := newTestServer(t)
	_, tok := s.user(t, "Ann", "a@x.com", domain.RoleNormalUser)

	w := s.do(t, http.MethodPut, "/api/auth/update-password", "", gin.H{"oldPassword": "secret123", "newPassword": "n"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/auth/update-password", tok, gin.H{"oldPassword": "wrong", "newPassword": "n"})
	assert.JSONEq(t, `{"error":"Old password is incorrect"}`, w.Body.String())

	w = s.do(t, http.MethodPut, "/api/auth/update-password", tok, gin.H{"oldPassword": "secret123", "newPassword": "fresh"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "fresh"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/stores/all", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up","redis":"up"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "store_rating_http_requests_total")
}

func TestRespondErrorHidesInternals(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.Validation("x"):                            http.StatusBadRequest,
		domain.Duplicate("x"):                             http.StatusConflict,
		domain.NotFound("x"):                              http.StatusNotFound,
		domain.NewError(domain.ErrForbidden, "x"):         http.StatusForbidden,
		domain.NewError(domain.ErrUnauthorized, "x"):      http.StatusUnauthorized,
		fmt.Errorf("wrapped: %w", domain.Validation("x")): http.StatusBadRequest,
		errors.New("anything else"):                       0,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestOptionalID(t *testing.T) {
	cases := []struct {
		in   string
		want *uint
		err  bool
	}{
		{`null`, nil, false},
		{`""`, nil, false},
		{`"  "`, nil, false},
		{`7`, uintPtr(7), false},
		{`"12"`, uintPtr(12), false},
		{`"abc"`, nil, true},
		{`-1`, nil, true},
	}
	for _, tc := range cases {
		var id optionalID
		err := json.Unmarshal([]byte(tc.in), &id)
		if tc.err {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, id.Value, tc.in)
	}
}

func uintPtr(v uint) *uint { return &v }
