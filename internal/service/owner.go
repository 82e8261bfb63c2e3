package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"propcatalog/internal/logger"
	"propcatalog/internal/model"
	"propcatalog/internal/repository"
	"propcatalog/internal/store"
)

const maxOwnerNameLength = 200

var (
	ErrInvalidOwner  = errors.New("invalid owner")
	ErrOwnerConflict = errors.New("owner already exists")
)

// CreateOwnerInput is an owner as submitted by a client. IDOwner is
// generated when empty.
type CreateOwnerInput struct {
	IDOwner  string     `json:"idOwner"`
	Name     string     `json:"name"`
	Address  *string    `json:"address"`
	Photo    *string    `json:"photo"`
	Birthday *time.Time `json:"birthday"`
}

// OwnerService defines the owner write use cases.
type OwnerService interface {
	// Create normalizes and stores a new owner. An owner with the same name
	// and birthday yields ErrOwnerConflict. The check and the insert are
	// not atomic.
	Create(ctx context.Context, in CreateOwnerInput) (*model.Owner, error)
}

type ownerService struct {
	repo repository.OwnerRepository
	log  logger.Logger
}

// NewOwnerService constructs a new OwnerService.
func NewOwnerService(repo repository.OwnerRepository, log logger.Logger) OwnerService {
	return &ownerService{repo: repo, log: log}
}

func (s *ownerService) Create(ctx context.Context, in CreateOwnerInput) (*model.Owner, error) {
	owner, err := normalizeOwner(in)
	if err != nil {
		return nil, err
	}
	log := s.log.WithContext(ctx)

	exists, err := s.repo.Exists(ctx, owner.Name, owner.Birthday)
	if err != nil {
		log.Error("check owner failed", "error", err)
		return nil, fmt.Errorf("check owner: %w", err)
	}
	if exists {
		log.Warn("owner already exists", "name", owner.Name)
		return nil, ErrOwnerConflict
	}

	if err := s.repo.Create(ctx, owner); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: id %s is taken", ErrOwnerConflict, owner.IDOwner)
		}
		log.Error("create owner failed", "error", err)
		return nil, fmt.Errorf("create owner: %w", err)
	}

	log.Info("owner created", "idOwner", owner.IDOwner)
	return owner, nil
}

func normalizeOwner(in CreateOwnerInput) (*model.Owner, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidOwner)
	}
	if utf8.RuneCountInString(name) > maxOwnerNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidOwner, maxOwnerNameLength)
	}

	id := strings.TrimSpace(in.IDOwner)
	if id == "" {
		id = "own-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	o := &model.Owner{
		IDOwner: id,
		Name:    name,
		Address: blankToNil(in.Address),
		Photo:   blankToNil(in.Photo),
	}
	if in.Birthday != nil {
		b := in.Birthday.UTC()
		o.Birthday = &b
	}
	return o, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
