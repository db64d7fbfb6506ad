package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
)

// Repository defines persistence operations for users and role profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateUser(ctx context.Context, row *models.User) (*models.User, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	CreateProducerProfile(ctx context.Context, row *models.ProducerProfile) (*models.ProducerProfile, error)
	CreateFreightProfile(ctx context.Context, row *models.FreightCompanyProfile) (*models.FreightCompanyProfile, error)
	CreateDriverProfile(ctx context.Context, row *models.DriverProfile) (*models.DriverProfile, error)
	FindProducerByUser(ctx context.Context, userID uuid.UUID) (*models.ProducerProfile, error)
	FindFreightByUser(ctx context.Context, userID uuid.UUID) (*models.FreightCompanyProfile, error)
	FindDriverByUser(ctx context.Context, userID uuid.UUID) (*models.DriverProfile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateUser(ctx context.Context, row *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var row models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var row models.User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateProducerProfile(ctx context.Context, row *models.ProducerProfile) (*models.ProducerProfile, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) CreateFreightProfile(ctx context.Context, row *models.FreightCompanyProfile) (*models.FreightCompanyProfile, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) CreateDriverProfile(ctx context.Context, row *models.DriverProfile) (*models.DriverProfile, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindProducerByUser(ctx context.Context, userID uuid.UUID) (*models.ProducerProfile, error) {
	var row models.ProducerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindFreightByUser(ctx context.Context, userID uuid.UUID) (*models.FreightCompanyProfile, error) {
	var row models.FreightCompanyProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindDriverByUser(ctx context.Context, userID uuid.UUID) (*models.DriverProfile, error) {
	var row models.DriverProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
