package facility

import (
	"context"
	"testing"

	"staybook/internal/cache"
	"staybook/internal/database"
	"staybook/internal/database/dbtest"
	"staybook/internal/domain"
	"staybook/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacilityLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(NewRepository(db), nil, logger.Discard())
	ctx := context.Background()

	wifi, err := svc.Create(ctx, Input{Name: " WiFi ", Icon: "wifi"})
	require.NoError(t, err)
	assert.Equal(t, "WiFi", wifi.Name)

	pool, err := svc.Create(ctx, Input{FacilityType: "Pool"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "WiFi"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Create(ctx, Input{})
	assert.ErrorIs(t, err, ErrNameRequired)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Pool", list[0].Name)

	updated, err := svc.Update(ctx, pool.ID, Input{Name: "Heated pool"})
	require.NoError(t, err)
	assert.Equal(t, "Heated pool", updated.Name)

	_, err = svc.Update(ctx, 999, Input{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Create(&database.PropertyFacilityModel{PropertyID: 1, FacilityID: wifi.ID}).Error)
	err = svc.Delete(ctx, wifi.ID)
	assert.ErrorIs(t, err, ErrInUse)

	require.NoError(t, svc.Delete(ctx, pool.ID))
	_, err = svc.Get(ctx, pool.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_InvalidatesLinkedProperties(t *testing.T) {
	db := dbtest.Open(t)
	mem := cache.NewMemory()
	svc := NewService(NewRepository(db), mem, logger.Discard())
	ctx := context.Background()

	wifi, err := svc.Create(ctx, Input{Name: "WiFi"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&database.PropertyFacilityModel{PropertyID: 7, FacilityID: wifi.ID}).Error)
	mem.SetProperty(ctx, &domain.Property{ID: 7})
	mem.SetProperty(ctx, &domain.Property{ID: 8})

	_, err = svc.Update(ctx, wifi.ID, Input{Name: "Fast WiFi"})
	require.NoError(t, err)

	_, ok := mem.GetProperty(ctx, 7)
	assert.False(t, ok)
	_, ok = mem.GetProperty(ctx, 8)
	assert.True(t, ok)
}
