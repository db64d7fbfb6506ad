package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/logger"
	"github.com/freightport/terminal-backend/pkg/sms"
)

type deliveryObserver interface {
	ObserveSMSDelivery(outcome string)
}

// Service composes and delivers the SMS messages the workflow produces.
// Delivery is always best-effort relative to the committed state change
// that triggered it.
type Service interface {
	CargoAccepted(ctx context.Context, producerID uuid.UUID, referenceCode string)
	AppointmentConfirmed(ctx context.Context, driverID uuid.UUID, referenceCode string) error
	CargoRejected(ctx context.Context, producerID uuid.UUID, referenceCode, note string)
}

type service struct {
	db       *gorm.DB
	sender   sms.Notifier
	logg     *logger.Logger
	observer deliveryObserver
}

// NewService builds the notification service. The observer is optional.
func NewService(db *gorm.DB, sender sms.Notifier, logg *logger.Logger, observer deliveryObserver) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sms sender required")
	}
	return &service{db: db, sender: sender, logg: logg, observer: observer}, nil
}

func (s *service) CargoAccepted(ctx context.Context, producerID uuid.UUID, referenceCode string) {
	msg := fmt.Sprintf("Your cargo %s has been accepted by a freight company.", referenceCode)
	s.sendToProducer(ctx, producerID, msg)
}

func (s *service) CargoRejected(ctx context.Context, producerID uuid.UUID, referenceCode, note string) {
	msg := fmt.Sprintf("Your cargo %s was declined: %s", referenceCode, note)
	s.sendToProducer(ctx, producerID, msg)
}

func (s *service) AppointmentConfirmed(ctx context.Context, driverID uuid.UUID, referenceCode string) error {
	phone, err := s.driverPhone(ctx, driverID)
	if err != nil {
		s.observe("failed")
		return err
	}
	msg := fmt.Sprintf("Your request for cargo %s has been approved. Proceed to the terminal for loading.", referenceCode)
	if err := s.sender.Send(ctx, phone, msg); err != nil {
		s.observe("failed")
		if s.logg != nil {
			s.logg.Warn(ctx, "driver confirmation sms failed")
		}
		return err
	}
	s.observe("sent")
	return nil
}

func (s *service) sendToProducer(ctx context.Context, producerID uuid.UUID, message string) {
	phone, err := s.producerPhone(ctx, producerID)
	if err != nil {
		s.observe("failed")
		if s.logg != nil {
			s.logg.Warn(ctx, "producer phone lookup failed")
		}
		return
	}
	if err := s.sender.Send(ctx, phone, message); err != nil {
		s.observe("failed")
		if s.logg != nil {
			s.logg.Warn(ctx, "producer sms failed")
		}
		return
	}
	s.observe("sent")
}

func (s *service) producerPhone(ctx context.Context, producerID uuid.UUID) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN producer_profiles ON producer_profiles.user_id = users.id").
		Where("producer_profiles.id = ?", producerID).
		First(&user).Error
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load producer phone")
	}
	return user.Phone, nil
}

func (s *service) driverPhone(ctx context.Context, driverID uuid.UUID) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN driver_profiles ON driver_profiles.user_id = users.id").
		Where("driver_profiles.id = ?", driverID).
		First(&user).Error
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver phone")
	}
	return user.Phone, nil
}

func (s *service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveSMSDelivery(outcome)
	}
}
