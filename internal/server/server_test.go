package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/database/dbtest"
	"staybook/internal/pkg/jwt"
	"staybook/internal/pkg/logger"
	"staybook/internal/storage/storagetest"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

type api struct {
	t  *testing.T
	r  *gin.Engine
	db *gorm.DB
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	read, err := database.Reader(db)
	require.NoError(t, err)

	r := NewRouter(Deps{
		Config: &config.Config{
			StorageDriver: config.StorageLocal,
			UploadDir:     t.TempDir(),
			MaxUploadSize: 1 << 20,
			CORSOrigins:   []string{"*"},
		},
		DB:      db,
		Reader:  read,
		JWT:     jwt.New("test-secret", time.Hour),
		Images:  storagetest.NewMemoryStore(),
		Avatars: storagetest.NewMemoryStore(),
		Log:     logger.Discard(),
		Now:     func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) },
	})
	return &api{t: t, r: r, db: db}
}

func (a *api) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *api) register(email string) (token string, id int64) {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Someone", "email": email, "password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, code)
	var res struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &res))
	return res.Token, res.User.ID
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)
	token, id := a.register("flow@example.com")

	code, env := a.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	var me struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "flow@example.com", me.Email)

	code, env = a.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Dup", "email": "FLOW@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "EMAIL_EXISTS", env.Error.Code)

	code, _ = a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "flow@example.com", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBookingFlow(t *testing.T) {
	a := newAPI(t)
	hostToken, _ := a.register("host@example.com")
	guestToken, _ := a.register("guest@example.com")

	code, env := a.do(http.MethodPost, "/api/v1/properties", hostToken, gin.H{
		"title": "Harbour Flat", "city": "Lisbon", "rent_per_day": 120, "max_guests": 3,
		"property_type": "Flat", "total_rooms": 2,
	})
	require.Equal(t, http.StatusCreated, code, env.Error.Code)
	var prop struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &prop))

	stay := gin.H{"property_id": prop.ID, "start_date": "2024-07-01", "end_date": "2024-07-03", "guests": 2}

	code, env = a.do(http.MethodPost, "/api/v1/bookings/check-availability", "", stay)
	require.Equal(t, http.StatusOK, code)
	var avail struct {
		Available   bool    `json:"available"`
		TotalAmount float64 `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.True(t, avail.Available)
	assert.InDelta(t, 240, avail.TotalAmount, 0.001)

	code, env = a.do(http.MethodPost, "/api/v1/bookings", hostToken, stay)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "SELF_BOOKING", env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/v1/bookings", guestToken, stay)
	require.Equal(t, http.StatusCreated, code, env.Error.Code)
	var created struct {
		Booking struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Pending", created.Booking.Status)

	code, env = a.do(http.MethodPost, "/api/v1/bookings", guestToken, stay)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "BOOKING_CONFLICT", env.Error.Code)

	path := "/api/v1/bookings/" + itoa(created.Booking.ID) + "/status"
	code, _ = a.do(http.MethodPatch, path, guestToken, gin.H{"status": "Confirmed"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPatch, path, hostToken, gin.H{"status": "Confirmed"})
	assert.Equal(t, http.StatusOK, code)
}

func TestPropertySearchAndUserDirectory(t *testing.T) {
	a := newAPI(t)
	hostToken, hostID := a.register("host@example.com")
	for _, title := range []string{"Harbour Flat", "Mountain Cabin"} {
		code, env := a.do(http.MethodPost, "/api/v1/properties", hostToken, gin.H{
			"title": title, "city": "Lisbon", "rent_per_day": 80, "max_guests": 2, "property_type": "Flat",
		})
		require.Equal(t, http.StatusCreated, code, env.Error.Code)
	}

	code, env := a.do(http.MethodGet, "/api/v1/properties/search?q=harbour", "", nil)
	require.Equal(t, http.StatusOK, code, env.Error.Code)
	var found struct {
		Properties []struct {
			Title string `json:"title"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.Len(t, found.Properties, 1)
	assert.Equal(t, "Harbour Flat", found.Properties[0].Title)

	code, env = a.do(http.MethodGet, "/api/v1/users", "", nil)
	require.Equal(t, http.StatusOK, code, env.Error.Code)
	var dir struct {
		Users []map[string]any `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dir))
	require.Len(t, dir.Users, 1)
	assert.EqualValues(t, hostID, dir.Users[0]["id"])
	assert.NotContains(t, dir.Users[0], "email")
	assert.NotContains(t, dir.Users[0], "phone")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	a := newAPI(t)
	token, id := a.register("plain@example.com")

	code, _ := a.do(http.MethodGet, "/api/v1/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	require.NoError(t, a.db.Table("users").Where("id = ?", id).Update("is_admin", true).Error)
	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "plain@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))

	code, _ = a.do(http.MethodGet, "/api/v1/admin/stats", res.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/v1/amenities", res.Token, gin.H{"name": "Sauna"})
	assert.Equal(t, http.StatusCreated, code)

	code, env = a.do(http.MethodGet, "/api/v1/facilities", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Sauna")
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
