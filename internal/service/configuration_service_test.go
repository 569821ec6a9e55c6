package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
)

type mockConfigurationStore struct {
	entries map[string]*models.Configuration
}

func (m *mockConfigurationStore) ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error) {
	var out []models.Configuration
	for _, key := range keys {
		if cfg, ok := m.entries[key]; ok {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (m *mockConfigurationStore) Get(ctx context.Context, key string) (*models.Configuration, error) {
	if cfg, ok := m.entries[key]; ok {
		return cfg, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockConfigurationStore) Upsert(ctx context.Context, cfg *models.Configuration) error {
	if m.entries == nil {
		m.entries = make(map[string]*models.Configuration)
	}
	m.entries[cfg.Key] = cfg
	return nil
}

func (m *mockConfigurationStore) BulkUpsert(ctx context.Context, cfgs []models.Configuration) error {
	for i := range cfgs {
		if err := m.Upsert(ctx, &cfgs[i]); err != nil {
			return err
		}
	}
	return nil
}

func TestGetMinStudentsThresholdDefault(t *testing.T) {
	svc := NewConfigurationService(&mockConfigurationStore{}, nil, 5, nil)

	threshold, err := svc.GetMinStudentsThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, threshold)
}

func TestGetMinStudentsThresholdFromStore(t *testing.T) {
	store := &mockConfigurationStore{entries: map[string]*models.Configuration{
		ConfigKeyMinStudentsThreshold: {Key: ConfigKeyMinStudentsThreshold, Value: "8", Type: models.ConfigurationTypeNumber},
	}}
	svc := NewConfigurationService(store, nil, 5, nil)

	threshold, err := svc.GetMinStudentsThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, threshold)
}

func TestGetMinStudentsThresholdMalformedFallsBack(t *testing.T) {
	store := &mockConfigurationStore{entries: map[string]*models.Configuration{
		ConfigKeyMinStudentsThreshold: {Key: ConfigKeyMinStudentsThreshold, Value: "many", Type: models.ConfigurationTypeNumber},
	}}
	svc := NewConfigurationService(store, nil, 5, nil)

	threshold, err := svc.GetMinStudentsThreshold(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, threshold)
}

func TestUpdateRejectsUnknownKey(t *testing.T) {
	svc := NewConfigurationService(&mockConfigurationStore{}, nil, 5, nil)

	_, err := svc.Update(context.Background(), "admin", dto.UpdateConfigurationRequest{
		Key: "nonexistent", Value: "1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown configuration key")
}

func TestUpdateValidatesTypes(t *testing.T) {
	store := &mockConfigurationStore{}
	svc := NewConfigurationService(store, nil, 5, nil)

	_, err := svc.Update(context.Background(), "admin", dto.UpdateConfigurationRequest{
		Key: ConfigKeyMinStudentsThreshold, Value: "zero",
	})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), "admin", dto.UpdateConfigurationRequest{
		Key: ConfigKeyMinStudentsThreshold, Value: "0",
	})
	require.Error(t, err)

	_, err = svc.Update(context.Background(), "admin", dto.UpdateConfigurationRequest{
		Key: ConfigKeyRoomTrackerUI, Value: "maybe",
	})
	require.Error(t, err)

	item, err := svc.Update(context.Background(), "admin", dto.UpdateConfigurationRequest{
		Key: ConfigKeyMinStudentsThreshold, Value: "7",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", item.Value)
	assert.Equal(t, "NUMBER", item.Type)
	require.Contains(t, store.entries, ConfigKeyMinStudentsThreshold)
	require.NotNil(t, store.entries[ConfigKeyMinStudentsThreshold].UpdatedBy)
	assert.Equal(t, "admin", *store.entries[ConfigKeyMinStudentsThreshold].UpdatedBy)
}

func TestBulkUpdateAllOrNothing(t *testing.T) {
	store := &mockConfigurationStore{}
	svc := NewConfigurationService(store, nil, 5, nil)

	err := svc.BulkUpdate(context.Background(), "admin", dto.BulkUpdateConfigurationRequest{
		Items: []dto.UpdateConfigurationRequest{
			{Key: ConfigKeyActiveSemester, Value: "2nd"},
			{Key: ConfigKeyMinStudentsThreshold, Value: "not-a-number"},
		},
	})
	require.Error(t, err)
	// Validation happens before any write.
	assert.Empty(t, store.entries)
}

func TestListMergesDefaults(t *testing.T) {
	store := &mockConfigurationStore{entries: map[string]*models.Configuration{
		ConfigKeyActiveSemester: {Key: ConfigKeyActiveSemester, Value: "2nd", Type: models.ConfigurationTypeString},
	}}
	svc := NewConfigurationService(store, nil, 5, nil)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, len(configurationKeyOrder))

	byKey := make(map[string]dto.ConfigurationItem)
	for _, item := range items {
		byKey[item.Key] = item
	}
	assert.Equal(t, "2nd", byKey[ConfigKeyActiveSemester].Value)
	assert.Equal(t, "5", byKey[ConfigKeyMinStudentsThreshold].Value)
	assert.Equal(t, "true", byKey[ConfigKeyRoomTrackerUI].Value)
}
