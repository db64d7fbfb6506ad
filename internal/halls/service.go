package halls

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
)

// Service exposes terminal and hall administration.
type Service interface {
	CreateTerminal(ctx context.Context, input TerminalInput) (*models.Terminal, error)
	GetTerminal(ctx context.Context, id uuid.UUID) (*models.Terminal, error)
	ListTerminals(ctx context.Context) ([]models.Terminal, error)
	CreateHall(ctx context.Context, input HallInput) (*models.Hall, error)
	GetHall(ctx context.Context, id uuid.UUID) (*models.Hall, error)
	ListHalls(ctx context.Context, terminalID uuid.UUID) ([]models.Hall, error)
}

type service struct {
	repo Repository
}

// NewService builds the terminal/hall service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("halls repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateTerminal(ctx context.Context, input TerminalInput) (*models.Terminal, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Province) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terminal name and province required")
	}
	row := models.Terminal{
		Name:     input.Name,
		Province: input.Province,
		City:     input.City,
	}
	if _, err := s.repo.CreateTerminal(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create terminal")
	}
	return &row, nil
}

func (s *service) GetTerminal(ctx context.Context, id uuid.UUID) (*models.Terminal, error) {
	row, err := s.repo.FindTerminal(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "terminal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load terminal")
	}
	return row, nil
}

func (s *service) ListTerminals(ctx context.Context) ([]models.Terminal, error) {
	rows, err := s.repo.ListTerminals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list terminals")
	}
	return rows, nil
}

func (s *service) CreateHall(ctx context.Context, input HallInput) (*models.Hall, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hall name required")
	}
	terminal, err := s.repo.FindTerminal(ctx, input.TerminalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "terminal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load terminal")
	}

	province := input.Province
	if province == "" {
		province = terminal.Province
	}
	row := models.Hall{
		TerminalID: terminal.ID,
		Name:       input.Name,
		Province:   province,
	}
	if _, err := s.repo.CreateHall(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create hall")
	}
	return &row, nil
}

func (s *service) GetHall(ctx context.Context, id uuid.UUID) (*models.Hall, error) {
	row, err := s.repo.FindHall(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hall not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hall")
	}
	return row, nil
}

func (s *service) ListHalls(ctx context.Context, terminalID uuid.UUID) ([]models.Hall, error) {
	rows, err := s.repo.ListHalls(ctx, terminalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list halls")
	}
	return rows, nil
}
