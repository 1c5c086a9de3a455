package repo

import (
	"DonationHub/internal/model"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// хелпер для создания базовой записи
func mkDonation(owner, title string, available bool, created time.Time) model.Donation {
	return model.Donation{
		OwnerEmail:  owner,
		DonorName:   "Ana",
		Title:       title,
		Description: "desc " + title,
		Category:    model.CategoryClothing,
		Condition:   "Usado",
		Location:    model.Location{City: "Cali"},
		Available:   available,
		CreatedAt:   created.UTC(),
	}
}

func TestDonationRepository_Create_GetByID(t *testing.T) {
	r := NewDonationRepository(newTestDB(t))
	ctx := context.Background()

	d := mkDonation("a@x.com", "abrigo", true, time.Now())
	d.Location.Address = strPtr("Calle 5")
	d.ImageURL = strPtr("/api/uploads/x.png")
	require.NoError(t, r.Create(ctx, &d))
	assert.NotEmpty(t, d.ID)

	got, err := r.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.OwnerEmail)
	assert.Equal(t, "abrigo", got.Title)
	assert.Equal(t, "Cali", got.Location.City)
	assert.Equal(t, "Calle 5", *got.Location.Address)
	assert.Equal(t, "/api/uploads/x.png", *got.ImageURL)
	assert.True(t, got.Available)
	assert.WithinDuration(t, d.CreatedAt, got.CreatedAt, time.Second)

	// отсутствующий и некорректный id неразличимы
	_, err = r.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDonationRepository_CreateKeepsExplicitFalse(t *testing.T) {
	r := NewDonationRepository(newTestDB(t))
	ctx := context.Background()

	d := mkDonation("a@x.com", "mesa", false, time.Now())
	require.NoError(t, r.Create(ctx, &d))

	got, err := r.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
}

func TestDonationRepository_List_OrderAndFilter(t *testing.T) {
	r := NewDonationRepository(newTestDB(t))
	ctx := context.Background()

	t1 := time.Now().UTC().Add(-3 * time.Hour)
	t2 := time.Now().UTC().Add(-2 * time.Hour)
	t3 := time.Now().UTC().Add(-1 * time.Hour)
	items := []model.Donation{
		mkDonation("a@x.com", "b", true, t2),
		mkDonation("a@x.com", "a", false, t1),
		mkDonation("b@y.com", "c", true, t3),
	}
	for i := range items {
		it := items[i]
		require.NoError(t, r.Create(ctx, &it))
	}

	all, err := r.List(ctx, false)
	require.NoError(t, err)
	if assert.Len(t, all, 3) {
		assert.Equal(t, "c", all[0].Title) // t3
		assert.Equal(t, "b", all[1].Title) // t2
		assert.Equal(t, "a", all[2].Title) // t1
	}

	avail, err := r.List(ctx, true)
	require.NoError(t, err)
	if assert.Len(t, avail, 2) {
		assert.Equal(t, "c", avail[0].Title)
		assert.Equal(t, "b", avail[1].Title)
	}

	mine, err := r.ListByOwner(ctx, "a@x.com")
	require.NoError(t, err)
	if assert.Len(t, mine, 2) {
		assert.Equal(t, "b", mine[0].Title)
		assert.Equal(t, "a", mine[1].Title)
	}

	none, err := r.ListByOwner(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDonationRepository_Update_Partial(t *testing.T) {
	r := NewDonationRepository(newTestDB(t))
	ctx := context.Background()

	d := mkDonation("a@x.com", "silla", true, time.Now())
	d.ImageURL = strPtr("/api/uploads/old.png")
	require.NoError(t, r.Create(ctx, &d))

	found, err := r.Update(ctx, d.ID, model.DonationPatch{Title: strPtr("silla roja"), City: strPtr("Bogotá")})
	require.NoError(t, err)
	assert.True(t, found)

	got, err := r.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "silla roja", got.Title)
	assert.Equal(t, "Bogotá", got.Location.City)
	assert.Equal(t, "desc silla", got.Description)
	// изображение не затронуто
	assert.Equal(t, "/api/uploads/old.png", *got.ImageURL)
	assert.Equal(t, "a@x.com", got.OwnerEmail)

	// пустой patch — только проверка существования
	found, err = r.Update(ctx, d.ID, model.DonationPatch{})
	require.NoError(t, err)
	assert.True(t, found)

	found, err = r.Update(ctx, uuid.NewString(), model.DonationPatch{Title: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = r.Update(ctx, "bad", model.DonationPatch{Title: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDonationRepository_ToggleAvailability(t *testing.T) {
	r := NewDonationRepository(newTestDB(t))
	ctx := context.Background()

	d := mkDonation("a@x.com", "juguete", true, time.Now())
	require.NoError(t, r.Create(ctx, &d))

	ok, err := r.ToggleAvailability(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := r.GetByID(ctx, d.ID)
	assert.False(t, got.Available)

	ok, err = r.ToggleAvailability(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = r.GetByID(ctx, d.ID)
	assert.True(t, got.Available)

	ok, err = r.ToggleAvailability(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDonationRepository_SetAvailability(t *testing.T) {
	r := NewDonationRepository(newTestDB(t))
	ctx := context.Background()

	d := mkDonation("a@x.com", "nevera", true, time.Now())
	require.NoError(t, r.Create(ctx, &d))

	changed, err := r.SetAvailability(ctx, d.ID, false)
	require.NoError(t, err)
	assert.True(t, changed)

	// уже false — изменений нет
	changed, err = r.SetAvailability(ctx, d.ID, false)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = r.SetAvailability(ctx, uuid.NewString(), true)
	require.NoError(t, err)
	assert.False(t, changed)

	got, _ := r.GetByID(ctx, d.ID)
	assert.False(t, got.Available)
}

func TestDonationRepository_Delete_DeleteAll(t *testing.T) {
	r := NewDonationRepository(newTestDB(t))
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		d := mkDonation("a@x.com", title, true, time.Now())
		require.NoError(t, r.Create(ctx, &d))
		ids = append(ids, d.ID)
	}

	deleted, err := r.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, deleted)

	// повторное удаление — false, не ошибка
	deleted, err = r.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = r.Delete(ctx, "garbage")
	require.NoError(t, err)
	assert.False(t, deleted)

	n, err := r.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := r.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, all)

	n, err = r.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
