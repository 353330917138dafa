package services

import (
	"SiteWatch/internal/backend/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWebsite_Validation(t *testing.T) {
	svc := NewWebsiteService(newFakeWebsiteStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		email    string
		url      string
		interval int
	}{
		{"empty user", "", "owner@example.com", "https://example.com", 1},
		{"bad url", "user-1", "owner@example.com", "example.com", 1},
		{"bad email", "user-1", "owner", "https://example.com", 1},
		{"zero interval", "user-1", "owner@example.com", "https://example.com", 0},
		{"negative interval", "user-1", "owner@example.com", "https://example.com", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			website, err := svc.CreateWebsite(ctx, tt.userID, tt.email, tt.url, tt.interval)
			assert.Error(t, err)
			assert.Nil(t, website)
		})
	}
}

func TestCreateWebsite_Succeeds(t *testing.T) {
	store := newFakeWebsiteStore()
	svc := NewWebsiteService(store, nil)

	website, err := svc.CreateWebsite(context.Background(), "user-1", "owner@example.com", "https://example.com", 5)
	require.NoError(t, err)
	require.NotNil(t, website)

	assert.NotEmpty(t, website.ID)
	assert.Equal(t, "user-1", website.UserID)
	assert.Equal(t, models.WebsiteStatusUnknown, website.Status)
	assert.Equal(t, 5, website.IntervalMinutes)

	stored, err := store.GetByID(context.Background(), website.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestUpdateWebsite_ReportsIntervalChange(t *testing.T) {
	store := newFakeWebsiteStore(userWebsite("site-a", "user-1", 5))
	svc := NewWebsiteService(store, nil)
	ctx := context.Background()

	// Интервал не менялся
	website, intervalChanged, err := svc.UpdateWebsite(ctx, "site-a", "owner@example.com", "https://new.example.com", 5)
	require.NoError(t, err)
	require.NotNil(t, website)
	assert.False(t, intervalChanged)
	assert.Equal(t, "https://new.example.com", website.URL)

	// Интервал изменился - вызывающий должен перезапустить мониторинг
	_, intervalChanged, err = svc.UpdateWebsite(ctx, "site-a", "owner@example.com", "https://new.example.com", 1)
	require.NoError(t, err)
	assert.True(t, intervalChanged)
}

func TestUpdateWebsite_MissingReturnsNil(t *testing.T) {
	svc := NewWebsiteService(newFakeWebsiteStore(), nil)

	website, intervalChanged, err := svc.UpdateWebsite(context.Background(), "missing", "owner@example.com", "https://example.com", 1)
	require.NoError(t, err)
	assert.Nil(t, website)
	assert.False(t, intervalChanged)
}

func TestUpdateWebsite_RejectsInvalidInterval(t *testing.T) {
	store := newFakeWebsiteStore(userWebsite("site-a", "user-1", 5))
	svc := NewWebsiteService(store, nil)

	_, _, err := svc.UpdateWebsite(context.Background(), "site-a", "owner@example.com", "https://example.com", 0)
	require.Error(t, err)

	// Сайт не изменился
	stored, err := store.GetByID(context.Background(), "site-a")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.IntervalMinutes)
}

func TestDeleteWebsite(t *testing.T) {
	store := newFakeWebsiteStore(userWebsite("site-a", "user-1", 1))
	svc := NewWebsiteService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteWebsite(ctx, "site-a"))

	stored, err := store.GetByID(ctx, "site-a")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
