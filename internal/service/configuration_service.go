package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
)

const (
	ConfigKeyMinStudentsThreshold = "min_students_threshold"
	ConfigKeyActiveSemester       = "active_semester"
	ConfigKeyActiveSchoolYear     = "active_school_year"
	ConfigKeyCampusDisplayName    = "campus_display_name"
	ConfigKeyRoomTrackerUI        = "enable_room_tracker_ui"
)

const thresholdCacheKey = "config:min_students_threshold"

// configurationDefinition pins the type, default and description of every
// key the API accepts. Unknown keys are rejected outright.
type configurationDefinition struct {
	Type        models.ConfigurationType
	Default     string
	Description string
}

var configurationDefinitions = map[string]configurationDefinition{
	ConfigKeyMinStudentsThreshold: {
		Type:        models.ConfigurationTypeNumber,
		Default:     "5",
		Description: "Minimum distinct students required before a derived faculty class is validated",
	},
	ConfigKeyActiveSemester: {
		Type:        models.ConfigurationTypeString,
		Default:     "1st",
		Description: "Semester currently accepting schedule uploads",
	},
	ConfigKeyActiveSchoolYear: {
		Type:        models.ConfigurationTypeString,
		Default:     "",
		Description: "School year currently accepting schedule uploads",
	},
	ConfigKeyCampusDisplayName: {
		Type:        models.ConfigurationTypeString,
		Default:     "Campus Information Portal",
		Description: "Name shown in client headers and exports",
	},
	ConfigKeyRoomTrackerUI: {
		Type:        models.ConfigurationTypeBoolean,
		Default:     "true",
		Description: "Whether clients render the room vacancy tracker",
	},
}

var configurationKeyOrder = []string{
	ConfigKeyMinStudentsThreshold,
	ConfigKeyActiveSemester,
	ConfigKeyActiveSchoolYear,
	ConfigKeyCampusDisplayName,
	ConfigKeyRoomTrackerUI,
}

type configurationStore interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error)
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
	BulkUpsert(ctx context.Context, cfgs []models.Configuration) error
}

type configurationCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ConfigurationService manages runtime-tunable settings. Values live in the
// database so admins can change them without a redeploy; env config only
// supplies the fallback threshold.
type ConfigurationService struct {
	store            configurationStore
	cache            configurationCache
	defaultThreshold int
	logger           *zap.Logger
}

// NewConfigurationService constructs the service.
func NewConfigurationService(store configurationStore, cache configurationCache, defaultThreshold int, logger *zap.Logger) *ConfigurationService {
	if defaultThreshold <= 0 {
		defaultThreshold = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{
		store:            store,
		cache:            cache,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

// List returns every known configuration entry, falling back to defaults for
// keys never written.
func (s *ConfigurationService) List(ctx context.Context) ([]dto.ConfigurationItem, error) {
	stored, err := s.store.ListByKeys(ctx, configurationKeyOrder)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list configurations")
	}
	byKey := make(map[string]models.Configuration, len(stored))
	for _, cfg := range stored {
		byKey[cfg.Key] = cfg
	}

	items := make([]dto.ConfigurationItem, 0, len(configurationKeyOrder))
	for _, key := range configurationKeyOrder {
		def := configurationDefinitions[key]
		value := def.Default
		if cfg, ok := byKey[key]; ok {
			value = cfg.Value
		}
		items = append(items, dto.ConfigurationItem{
			Key:         key,
			Value:       value,
			Type:        string(def.Type),
			Description: def.Description,
		})
	}
	return items, nil
}

// Get returns one configuration entry, falling back to its default when the
// key was never written. Unknown keys are rejected.
func (s *ConfigurationService) Get(ctx context.Context, key string) (*dto.ConfigurationItem, error) {
	def, ok := configurationDefinitions[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown configuration key %q", key))
	}
	value := def.Default
	cfg, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		value = cfg.Value
	case errors.Is(err, sql.ErrNoRows):
		// never configured; the default applies
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read configuration")
	}
	return &dto.ConfigurationItem{
		Key:         key,
		Value:       value,
		Type:        string(def.Type),
		Description: def.Description,
	}, nil
}

// Update validates and persists a single configuration value.
func (s *ConfigurationService) Update(ctx context.Context, actorID string, req dto.UpdateConfigurationRequest) (*dto.ConfigurationItem, error) {
	cfg, err := s.buildEntry(actorID, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update configuration")
	}
	s.invalidate(ctx)

	def := configurationDefinitions[cfg.Key]
	return &dto.ConfigurationItem{
		Key:         cfg.Key,
		Value:       cfg.Value,
		Type:        string(def.Type),
		Description: def.Description,
	}, nil
}

// BulkUpdate validates every item first, then persists them in one
// transaction. A single bad item rejects the whole batch.
func (s *ConfigurationService) BulkUpdate(ctx context.Context, actorID string, req dto.BulkUpdateConfigurationRequest) error {
	cfgs := make([]models.Configuration, 0, len(req.Items))
	for _, item := range req.Items {
		cfg, err := s.buildEntry(actorID, item)
		if err != nil {
			return err
		}
		cfgs = append(cfgs, *cfg)
	}
	if err := s.store.BulkUpsert(ctx, cfgs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update configurations")
	}
	s.invalidate(ctx)
	return nil
}

// GetMinStudentsThreshold reads the validation threshold, consulting the
// cache first. A missing or malformed database value falls back to the
// deployment default rather than failing the aggregation.
func (s *ConfigurationService) GetMinStudentsThreshold(ctx context.Context) (int, error) {
	if s.cache != nil {
		var cached int
		if err := s.cache.Get(ctx, thresholdCacheKey, &cached); err == nil && cached > 0 {
			return cached, nil
		}
	}

	threshold := s.defaultThreshold
	cfg, err := s.store.Get(ctx, ConfigKeyMinStudentsThreshold)
	switch {
	case err == nil:
		parsed, parseErr := strconv.Atoi(cfg.Value)
		if parseErr != nil || parsed < 1 {
			s.logger.Warn("ignoring malformed threshold configuration",
				zap.String("value", cfg.Value))
		} else {
			threshold = parsed
		}
	case errors.Is(err, sql.ErrNoRows):
		// never configured; the default applies
	default:
		return 0, fmt.Errorf("read threshold configuration: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, thresholdCacheKey, threshold, time.Minute); err != nil {
			s.logger.Warn("failed to cache threshold", zap.Error(err))
		}
	}
	return threshold, nil
}

func (s *ConfigurationService) buildEntry(actorID string, req dto.UpdateConfigurationRequest) (*models.Configuration, error) {
	def, ok := configurationDefinitions[req.Key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown configuration key %q", req.Key))
	}
	if err := validateConfigurationValue(def.Type, req.Key, req.Value); err != nil {
		return nil, err
	}
	description := def.Description
	return &models.Configuration{
		Key:         req.Key,
		Value:       req.Value,
		Type:        def.Type,
		Description: &description,
		UpdatedBy:   &actorID,
	}, nil
}

func validateConfigurationValue(t models.ConfigurationType, key, value string) error {
	switch t {
	case models.ConfigurationTypeNumber:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be an integer", key))
		}
		if key == ConfigKeyMinStudentsThreshold && parsed < 1 {
			return appErrors.Clone(appErrors.ErrValidation, "min_students_threshold must be at least 1")
		}
	case models.ConfigurationTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a boolean", key))
		}
	}
	return nil
}

func (s *ConfigurationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "config:*"); err != nil {
		s.logger.Warn("failed to invalidate configuration cache", zap.Error(err))
	}
}
