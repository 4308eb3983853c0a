// Package gormstore implements the driver registry on a SQL database through GORM.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reglet-dev/reglet-driver-sdk/driver/entities"
	"github.com/reglet-dev/reglet-driver-sdk/driver/ports"
	"github.com/reglet-dev/reglet-driver-sdk/driver/values"
)

// driverRecord is the row layout of the drivers table.
type driverRecord struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Name          string `gorm:"primaryKey;size:64"`
	Category      string `gorm:"index;size:255"`
	Title         string `gorm:"size:255"`
	Class         string `gorm:"size:255"`
	Description   string `gorm:"type:text"`
	Version       string `gorm:"size:64"`
	ExtensionName string `gorm:"size:255"`
	Config        string `gorm:"type:text"`
	Status        int    `gorm:"index"`
}

func (driverRecord) TableName() string {
	return "drivers"
}

// upsertColumns are overwritten when a driver is reinstalled; status is not.
var upsertColumns = []string{
	"category", "title", "class", "description", "version",
	"extension_name", "config", "updated_at",
}

// Store implements ports.RegistryStore using GORM.
type Store struct {
	db *gorm.DB
}

// NewStore creates the store and migrates the drivers table.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("gormstore: db is required")
	}
	if err := db.AutoMigrate(&driverRecord{}); err != nil {
		return nil, fmt.Errorf("migrate drivers table: %w", err)
	}
	return &Store{db: db}, nil
}

// GetDriver returns the descriptor stored under name.
func (s *Store) GetDriver(ctx context.Context, name string) (*entities.Descriptor, error) {
	rec, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}
	return rec.toEntity()
}

// AddDriver inserts or updates a descriptor. Updating keeps the stored status.
func (s *Store) AddDriver(ctx context.Context, name string, descriptor *entities.Descriptor) error {
	d := descriptor.Clone()
	if d == nil {
		d = &entities.Descriptor{}
	}
	d.Name = name
	d.ApplyDefaults()
	if err := d.Validate(); err != nil {
		return err
	}

	rec, err := fromEntity(d)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("save driver %q: %w", name, err)
	}
	return nil
}

// RemoveDriver deletes a descriptor.
func (s *Store) RemoveDriver(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Where("name = ?", name).Delete(&driverRecord{})
	if res.Error != nil {
		return fmt.Errorf("remove driver %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return &entities.DriverNotFoundError{Name: name}
	}
	return nil
}

// HasDriver reports whether name is stored.
func (s *Store) HasDriver(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&driverRecord{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup driver %q: %w", name, err)
	}
	return count > 0, nil
}

// GetDriverConfig returns the stored config. An unknown driver yields an empty mapping.
func (s *Store) GetDriverConfig(ctx context.Context, name string) (map[string]any, error) {
	rec, err := s.find(ctx, name)
	if errors.Is(err, entities.ErrDriverNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeConfig(rec.Config)
}

// SaveConfig replaces the stored config.
func (s *Store) SaveConfig(ctx context.Context, name string, config map[string]any) error {
	raw, err := encodeConfig(config)
	if err != nil {
		return err
	}
	return s.updateColumn(ctx, name, "config", raw)
}

// GetDriversList returns matching descriptors sorted by name.
func (s *Store) GetDriversList(ctx context.Context, filter ports.ListFilter) ([]*entities.Descriptor, error) {
	q := s.db.WithContext(ctx).Model(&driverRecord{}).Order("name")
	if filter.Status != nil {
		q = q.Where("status = ?", int(*filter.Status))
	}
	if filter.Category != "" && !isGlob(filter.Category) {
		q = q.Where("category = ?", filter.Category)
	}

	var recs []driverRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	out := make([]*entities.Descriptor, 0, len(recs))
	for i := range recs {
		d, err := recs[i].toEntity()
		if err != nil {
			return nil, err
		}
		if filter.Match(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// SetDriverStatus updates the status of a stored driver.
func (s *Store) SetDriverStatus(ctx context.Context, name string, status values.Status) error {
	return s.updateColumn(ctx, name, "status", int(status))
}

func (s *Store) find(ctx context.Context, name string) (*driverRecord, error) {
	var rec driverRecord
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &entities.DriverNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("load driver %q: %w", name, err)
	}
	return &rec, nil
}

func (s *Store) updateColumn(ctx context.Context, name, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&driverRecord{}).Where("name = ?", name).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update driver %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return &entities.DriverNotFoundError{Name: name}
	}
	return nil
}

func (r *driverRecord) toEntity() (*entities.Descriptor, error) {
	config, err := decodeConfig(r.Config)
	if err != nil {
		return nil, fmt.Errorf("driver %q: %w", r.Name, err)
	}
	return &entities.Descriptor{
		Name:          r.Name,
		Category:      r.Category,
		Title:         r.Title,
		Class:         r.Class,
		Description:   r.Description,
		Version:       r.Version,
		ExtensionName: r.ExtensionName,
		Config:        config,
		Status:        values.Status(r.Status),
	}, nil
}

func fromEntity(d *entities.Descriptor) (*driverRecord, error) {
	raw, err := encodeConfig(d.Config)
	if err != nil {
		return nil, err
	}
	return &driverRecord{
		Name:          d.Name,
		Category:      d.Category,
		Title:         d.Title,
		Class:         d.Class,
		Description:   d.Description,
		Version:       d.Version,
		ExtensionName: d.ExtensionName,
		Config:        raw,
		Status:        int(d.Status),
	}, nil
}

func encodeConfig(config map[string]any) (string, error) {
	if config == nil {
		config = map[string]any{}
	}
	b, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("encode driver config: %w", err)
	}
	return string(b), nil
}

func decodeConfig(raw string) (map[string]any, error) {
	out := map[string]any{}
	if raw == "" {
		return out, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode driver config: %w", err)
	}
	return entities.NormalizeConfig(out), nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}

var _ ports.RegistryStore = (*Store)(nil)
