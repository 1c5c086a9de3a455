package repo

import (
	"DonationHub/internal/model"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound — запись не найдена либо id некорректен для хранилища.
var ErrNotFound = errors.New("donation not found")

// DonationRepository контракт доступа к Donation для слоя сервиса.
// Все мутации выполняются одним запросом к хранилищу.
type DonationRepository interface {
	// Create сохраняет запись; ID назначается хранилищем, если пуст.
	Create(ctx context.Context, d *model.Donation) error

	// List возвращает записи, новые первыми. onlyAvailable оставляет только available=true.
	List(ctx context.Context, onlyAvailable bool) ([]model.Donation, error)

	// ListByOwner возвращает записи владельца, новые первыми.
	ListByOwner(ctx context.Context, email string) ([]model.Donation, error)

	// GetByID возвращает ErrNotFound и для отсутствующего, и для некорректного id.
	GetByID(ctx context.Context, id string) (*model.Donation, error)

	// Update применяет заданные поля patch. found=false, если записи нет.
	Update(ctx context.Context, id string, patch model.DonationPatch) (found bool, err error)

	// ToggleAvailability атомарно инвертирует available.
	ToggleAvailability(ctx context.Context, id string) (found bool, err error)

	// SetAvailability выставляет available; changed=false, если записи нет или значение уже такое.
	SetAvailability(ctx context.Context, id string, available bool) (changed bool, err error)

	// Delete удаляет одну запись.
	Delete(ctx context.Context, id string) (deleted bool, err error)

	// DeleteAll удаляет все записи и возвращает их количество.
	DeleteAll(ctx context.Context) (int64, error)
}

type donationRepo struct {
	db *gorm.DB
}

// NewDonationRepository создаёт gorm-реализацию репозитория.
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepo{db: db}
}

// validID: не-UUID трактуется как «не найдено», а не как ошибка.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *donationRepo) Create(ctx context.Context, d *model.Donation) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *donationRepo) List(ctx context.Context, onlyAvailable bool) ([]model.Donation, error) {
	var out []model.Donation
	q := r.db.WithContext(ctx).Model(&model.Donation{})
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *donationRepo) ListByOwner(ctx context.Context, email string) ([]model.Donation, error) {
	var out []model.Donation
	err := r.db.WithContext(ctx).
		Where("owner_email = ?", email).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *donationRepo) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var d model.Donation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// patchColumns переводит patch в набор колонок gorm.
func patchColumns(p model.DonationPatch) map[string]any {
	cols := map[string]any{}
	if p.DonorName != nil {
		cols["donor_name"] = *p.DonorName
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Condition != nil {
		cols["condition"] = *p.Condition
	}
	if p.ExpirationDate != nil {
		cols["expiration_date"] = *p.ExpirationDate
	}
	if p.City != nil {
		cols["location_city"] = *p.City
	}
	if p.Address != nil {
		cols["location_address"] = *p.Address
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

func (r *donationRepo) Update(ctx context.Context, id string, patch model.DonationPatch) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	cols := patchColumns(patch)
	if len(cols) == 0 {
		// нечего обновлять — достаточно проверить существование
		var n int64
		err := r.db.WithContext(ctx).Model(&model.Donation{}).Where("id = ?", id).Count(&n).Error
		return n > 0, err
	}
	tx := r.db.WithContext(ctx).Model(&model.Donation{}).Where("id = ?", id).Updates(cols)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *donationRepo) ToggleAvailability(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tx := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("id = ?", id).
		Update("available", gorm.Expr("NOT available"))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *donationRepo) SetAvailability(ctx context.Context, id string, available bool) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	// условие available <> ? даёт семантику «изменено», а не «найдено»
	tx := r.db.WithContext(ctx).Model(&model.Donation{}).
		Where("id = ? AND available <> ?", id, available).
		Update("available", available)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *donationRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Donation{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *donationRepo) DeleteAll(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Donation{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
