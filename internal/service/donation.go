package service

import (
	"DonationHub/internal/model"
	"DonationHub/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrForbidden — действующее лицо не владелец записи и не администратор.
var ErrForbidden = errors.New("forbidden: not the donation owner")

// Actor — аутентифицированный пользователь, выполняющий операцию.
type Actor struct {
	Email string
	Admin bool
}

// DonationService инкапсулирует жизненный цикл пожертвований.
type DonationService struct {
	repo   repo.DonationRepository
	logger *zap.SugaredLogger
	now    func() time.Time
}

// Option настраивает DonationService при создании.
type Option func(*DonationService)

// WithClock подменяет часы, которыми проставляется CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *DonationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDonationService создаёт сервис поверх переданного репозитория.
func NewDonationService(r repo.DonationRepository, logger *zap.SugaredLogger, opts ...Option) *DonationService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &DonationService{
		repo:   r,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create сохраняет уже провалидированный ввод. Email владельца берётся из
// аутентифицированного пользователя вызывающей стороной.
func (s *DonationService) Create(ctx context.Context, in DonationInput, imageURL *string) (*model.Donation, error) {
	d := &model.Donation{
		OwnerEmail:     in.OwnerEmail,
		DonorName:      in.DonorName,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Condition:      in.Condition,
		ExpirationDate: in.ExpirationDate,
		ImageURL:       imageURL,
		Available:      true,
		CreatedAt:      s.now().UTC(),
	}
	if in.Available != nil {
		d.Available = *in.Available
	}
	if in.Location != nil {
		d.Location.City = in.Location.City
		if in.Location.Address != nil {
			addr := strings.TrimSpace(*in.Location.Address)
			d.Location.Address = &addr
		}
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}
	s.logger.Infow("donation created", "id", d.ID, "owner", d.OwnerEmail, "category", d.Category)
	return d, nil
}

// List возвращает пожертвования, новые первыми.
func (s *DonationService) List(ctx context.Context, onlyAvailable bool) ([]model.Donation, error) {
	ds, err := s.repo.List(ctx, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return ds, nil
}

// ListByOwner — пожертвования пользователя «мои объявления».
func (s *DonationService) ListByOwner(ctx context.Context, email string) ([]model.Donation, error) {
	ds, err := s.repo.ListByOwner(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list donations by owner: %w", err)
	}
	return ds, nil
}

// GetByID: некорректный и отсутствующий id одинаково дают found=false.
func (s *DonationService) GetByID(ctx context.Context, id string) (*model.Donation, bool, error) {
	d, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get donation: %w", err)
	}
	return d, true, nil
}

// Authorize загружает запись и проверяет, что actor — владелец или администратор.
// found=false без ошибки, если записи нет.
func (s *DonationService) Authorize(ctx context.Context, actor Actor, id string) (bool, error) {
	d, found, err := s.GetByID(ctx, id)
	if err != nil || !found {
		return found, err
	}
	if !actor.Admin && d.OwnerEmail != actor.Email {
		s.logger.Warnw("ownership check failed", "id", id, "actor", actor.Email)
		return true, ErrForbidden
	}
	return true, nil
}

// Modify частично обновляет запись. imageURL записывается только если
// загружено новое изображение, иначе текущее сохраняется.
func (s *DonationService) Modify(ctx context.Context, actor Actor, id string, patch model.DonationPatch, imageURL *string) (bool, error) {
	found, err := s.Authorize(ctx, actor, id)
	if err != nil || !found {
		return found, err
	}

	patch.ImageURL = imageURL
	if patch.Address != nil {
		addr := strings.TrimSpace(*patch.Address)
		patch.Address = &addr
	}

	found, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		return false, fmt.Errorf("modify donation: %w", err)
	}
	return found, nil
}

// ToggleAvailability инвертирует available одним атомарным обновлением.
func (s *DonationService) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	found, err := s.repo.ToggleAvailability(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle availability: %w", err)
	}
	return found, nil
}

// SetAvailability явно выставляет available. false — записи нет или значение не изменилось.
func (s *DonationService) SetAvailability(ctx context.Context, id string, available bool) (bool, error) {
	changed, err := s.repo.SetAvailability(ctx, id, available)
	if err != nil {
		return false, fmt.Errorf("set availability: %w", err)
	}
	return changed, nil
}

// Delete безвозвратно удаляет запись владельца.
func (s *DonationService) Delete(ctx context.Context, actor Actor, id string) (bool, error) {
	found, err := s.Authorize(ctx, actor, id)
	if err != nil || !found {
		return found, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete donation: %w", err)
	}
	if deleted {
		s.logger.Infow("donation deleted", "id", id, "actor", actor.Email)
	}
	return deleted, nil
}

// DeleteAll удаляет все записи. Проверка прав — на стороне транспорта.
func (s *DonationService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all donations: %w", err)
	}
	s.logger.Warnw("all donations deleted", "count", n)
	return n, nil
}
