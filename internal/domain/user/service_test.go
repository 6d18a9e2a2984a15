package user

import (
	"context"
	"testing"
	"time"

	"staybook/internal/cache"
	"staybook/internal/database"
	"staybook/internal/database/dbtest"
	"staybook/internal/domain"
	"staybook/internal/domain/property"
	"staybook/internal/pkg/apperr"
	"staybook/internal/pkg/jwt"
	"staybook/internal/pkg/logger"
	"staybook/internal/pkg/pagination"
	"staybook/internal/storage/storagetest"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	jwt     *jwt.Service
	avatars *storagetest.MemoryStore
	images  *storagetest.MemoryStore
	cache   *cache.Memory
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{
		db:      db,
		jwt:     jwt.New("test-secret", time.Hour),
		avatars: storagetest.NewMemoryStore(),
		images:  storagetest.NewMemoryStore(),
		cache:   cache.NewMemory(),
	}
	f.svc = NewService(Deps{
		Users:       NewRepository(db),
		Properties:  property.NewRepository(db),
		Tx:          database.NewTxRunner(db),
		JWT:         f.jwt,
		Avatars:     f.avatars,
		Images:      f.images,
		Cache:       f.cache,
		Log:         logger.Discard(),
		MaxFileSize: 1 << 20,
	})
	return f
}

func (f *fixture) register(t *testing.T, email string) *domain.User {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterRequest{Name: "Test User", Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res.User
}

func (f *fixture) property(t *testing.T, hostID int64) int64 {
	t.Helper()
	p := database.PropertyModel{HostID: hostID, Title: "Cabin", City: "Oslo", RentPerDay: 90, MaxGuests: 4, PropertyType: string(domain.PropertyFlat)}
	require.NoError(t, f.db.Create(&p).Error)
	return p.ID
}

func (f *fixture) booking(t *testing.T, propertyID, guestID int64, status domain.BookingStatus) int64 {
	t.Helper()
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	m := database.BookingModel{
		PropertyID: propertyID,
		GuestID:    guestID,
		StartDate:  datatypes.Date(start),
		EndDate:    datatypes.Date(start.AddDate(0, 0, 3)),
		Guests:     2,
		TotalPrice: 360,
		Status:     string(status),
	}
	require.NoError(t, f.db.Create(&m).Error)
	return m.ID
}

func TestRegisterAndLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, RegisterRequest{FirstName: "Ada", LastName: "Lovelace", Email: " Ada@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", res.User.Name)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)
	assert.EqualValues(t, 3600, res.ExpiresIn)

	claims, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, jwt.RoleUser, claims.Role)

	logged, err := f.svc.Login(ctx, LoginRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, logged.User.ID)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "taken@example.com")

	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Dup", Email: "TAKEN@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailExists)

	cases := map[string]RegisterRequest{
		"bad email":      {Name: "A", Email: "not-an-email", Password: "secret1"},
		"short password": {Name: "A", Email: "a@example.com", Password: "123"},
		"no name":        {Email: "b@example.com", Password: "secret1"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestAdminTokenRole(t *testing.T) {
	f := setup(t)
	u := f.register(t, "root@example.com")
	require.NoError(t, f.db.Model(&database.UserModel{}).Where("id = ?", u.ID).Update("is_admin", true).Error)

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, claims.Role)
}

func TestProfileAndPassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "p@example.com")

	name, phone := "  New Name ", "+47 123"
	updated, err := f.svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "+47 123", updated.Phone)

	blank := " "
	_, err = f.svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Name: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	public, err := f.svc.GetPublic(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, public.Email)
	assert.Empty(t, public.Phone)
	assert.Equal(t, "New Name", public.Name)

	_, err = f.svc.GetPublic(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "another1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "another1"}))
	_, err = f.svc.Login(ctx, LoginRequest{Email: "p@example.com", Password: "another1"})
	assert.NoError(t, err)
}

func TestUploadAvatar_ReplacesPrevious(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.register(t, "avatar@example.com")

	_, err := f.svc.UploadAvatar(ctx, u.ID, nil)
	assert.ErrorIs(t, err, ErrAvatarMissing)

	bad := storagetest.FileHeaders(t, avatarField, storagetest.NamedFile{Name: "notes.txt", Content: []byte("hello")})
	_, err = f.svc.UploadAvatar(ctx, u.ID, bad[0])
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	first := storagetest.FileHeaders(t, avatarField, storagetest.NamedFile{Name: "me.png", Content: storagetest.PNG})
	withAvatar, err := f.svc.UploadAvatar(ctx, u.ID, first[0])
	require.NoError(t, err)
	assert.Contains(t, withAvatar.ProfileImage, "me.png")
	oldKey := withAvatar.AvatarKey

	second := storagetest.FileHeaders(t, avatarField, storagetest.NamedFile{Name: "me2.jpg", Content: storagetest.JPEG})
	replaced, err := f.svc.UploadAvatar(ctx, u.ID, second[0])
	require.NoError(t, err)
	assert.Contains(t, replaced.ProfileImage, "me2.jpg")
	assert.Equal(t, 1, f.avatars.Count())
	assert.Contains(t, f.avatars.Removed, oldKey)
}

func TestDelete_BlockedByActiveHostedBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	host := f.register(t, "host@example.com")
	guest := f.register(t, "guest@example.com")
	prop := f.property(t, host.ID)
	f.booking(t, prop, guest.ID, domain.BookingConfirmed)

	err := f.svc.Delete(ctx, host.ID)
	assert.ErrorIs(t, err, ErrActiveBookings)

	_, err = f.svc.Get(ctx, host.ID)
	assert.NoError(t, err)
}

func TestDelete_Cascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	host := f.register(t, "host@example.com")
	guest := f.register(t, "guest@example.com")

	prop := f.property(t, host.ID)
	f.booking(t, prop, guest.ID, domain.BookingCompleted)
	require.NoError(t, f.db.Create(&database.PictureModel{PropertyID: prop, URL: "http://cdn.test/a.png", StorageKey: "property-images/a.png", IsPrimary: true}).Error)
	f.images.Files["property-images/a.png"] = "a.png"

	// the host also travels
	other := f.register(t, "other@example.com")
	otherProp := f.property(t, other.ID)
	open := f.booking(t, otherProp, host.ID, domain.BookingPending)

	require.NoError(t, f.svc.Delete(ctx, host.ID))

	_, err := f.svc.Get(ctx, host.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var props int64
	require.NoError(t, f.db.Model(&database.PropertyModel{}).Where("host_id = ?", host.ID).Count(&props).Error)
	assert.Zero(t, props)

	var b database.BookingModel
	require.NoError(t, f.db.First(&b, open).Error)
	assert.Equal(t, string(domain.BookingCancelled), b.Status)

	assert.Contains(t, f.images.Removed, "property-images/a.png")
	assert.Zero(t, f.images.Count())
}

func (f *fixture) cached(t *testing.T, propertyID int64) {
	t.Helper()
	f.cache.SetProperty(context.Background(), &domain.Property{ID: propertyID, Title: "Cabin"})
	_, ok := f.cache.GetProperty(context.Background(), propertyID)
	require.True(t, ok)
}

func TestUpdateProfile_InvalidatesHostedProperties(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	host := f.register(t, "host@example.com")
	other := f.register(t, "other@example.com")
	prop := f.property(t, host.ID)
	foreign := f.property(t, other.ID)
	f.cached(t, prop)
	f.cached(t, foreign)

	name := "Renamed Host"
	_, err := f.svc.UpdateProfile(ctx, host.ID, UpdateProfileRequest{Name: &name})
	require.NoError(t, err)

	_, ok := f.cache.GetProperty(ctx, prop)
	assert.False(t, ok)
	_, ok = f.cache.GetProperty(ctx, foreign)
	assert.True(t, ok)
}

func TestDelete_InvalidatesReviewedProperties(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	host := f.register(t, "host@example.com")
	guest := f.register(t, "guest@example.com")
	prop := f.property(t, host.ID)
	b := f.booking(t, prop, guest.ID, domain.BookingCompleted)
	require.NoError(t, f.db.Create(&database.ReviewModel{BookingID: b, PropertyID: prop, UserID: guest.ID, Rating: 5}).Error)
	f.cached(t, prop)

	require.NoError(t, f.svc.Delete(ctx, guest.ID))

	_, ok := f.cache.GetProperty(ctx, prop)
	assert.False(t, ok)
	var reviews int64
	require.NoError(t, f.db.Model(&database.ReviewModel{}).Where("user_id = ?", guest.ID).Count(&reviews).Error)
	assert.Zero(t, reviews)
}

func TestList_HidesContactDetails(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		f.register(t, email)
	}

	res, err := f.svc.List(ctx, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Pagination.Total)
	assert.Equal(t, 2, res.Pagination.Pages)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "Test User", res.Users[0].Name)

	raw, err := json.Marshal(res.Users[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "email")
	assert.NotContains(t, string(raw), "phone")
}
