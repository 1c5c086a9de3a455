package handlers

import (
	"DonationHub/internal/config"
	"DonationHub/internal/middleware"
	"DonationHub/internal/model"
	"DonationHub/internal/service"
	"DonationHub/internal/storage"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgNotFound     = "Donación no encontrada"
	msgUnauthorized = "unauthorized"
	msgForbidden    = "No tiene permiso sobre esta donación"
)

var errImageTooLarge = errors.New("image too large")
var errNotImage = errors.New("not an image")

// DonationHandler обрабатывает операции над пожертвованиями.
type DonationHandler struct {
	Donations *service.DonationService
	Images    storage.ObjectStore
	Logger    *zap.SugaredLogger
	Config    *config.Config
}

// NewDonationHandler создаёт хендлер donations
func NewDonationHandler(donations *service.DonationService, images storage.ObjectStore, logger *zap.SugaredLogger, cfg *config.Config) *DonationHandler {
	return &DonationHandler{Donations: donations, Images: images, Logger: logger, Config: cfg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *DonationHandler) actor(r *http.Request) (service.Actor, bool) {
	email, ok := middleware.GetEmailFromContext(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{Email: email, Admin: h.Config.IsAdmin(email)}, true
}

// parseForm принимает multipart и urlencoded формы с общим лимитом тела.
func (h *DonationHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	maxBody := int64(h.Config.ImageMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	err := r.ParseMultipartForm(10 << 20)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func (h *DonationHandler) formError(w http.ResponseWriter, op string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "La imagen es demasiado grande")
		return
	}
	h.Logger.Warnw(op+": invalid form", "error", err)
	writeError(w, http.StatusBadRequest, "invalid form")
}

// formValue возвращает обрезанное значение; ok=false, если поля нет в форме.
func formValue(r *http.Request, key string) (string, bool) {
	if _, ok := r.PostForm[key]; !ok {
		return "", false
	}
	return strings.TrimSpace(r.PostForm.Get(key)), true
}

// optionalValue: пустое значение трактуется как отсутствие поля.
func optionalValue(r *http.Request, key string) *string {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// saveImage сохраняет файл из поля image. Без файла — nil, nil.
func (h *DonationHandler) saveImage(r *http.Request) (*string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	limit := int64(h.Config.ImageMaxSizeMB) * 1024 * 1024
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errImageTooLarge
	}
	if !storage.IsImage(data) {
		return nil, errNotImage
	}

	url, err := h.Images.Put(r.Context(), header.Filename, data)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// hasImage сообщает, пришёл ли файл в поле image.
func hasImage(r *http.Request) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File["image"]) > 0
}

// discardImage удаляет уже сохранённое изображение, если запись так и не обновилась.
func (h *DonationHandler) discardImage(r *http.Request, imageURL *string) {
	if imageURL == nil {
		return
	}
	if err := h.Images.Delete(r.Context(), *imageURL); err != nil {
		h.Logger.Warnw("failed to discard image", "url", *imageURL, "error", err)
	}
}

// imageError отвечает клиенту по ошибке загрузки. true, если ответ отправлен.
func (h *DonationHandler) imageError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, errImageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "La imagen es demasiado grande")
	case errors.Is(err, errNotImage):
		writeJSON(w, http.StatusBadRequest, map[string]string{"image": "El archivo debe ser una imagen"})
	default:
		h.Logger.Errorw("image upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}

// Create создаёт пожертвование из multipart-формы
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	if err := h.parseForm(w, r); err != nil {
		h.formError(w, "Create", err)
		return
	}
	// временные файлы multipart удаляем сами: net/http чистит только исходный *Request
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	city, _ := formValue(r, "city")
	loc := &model.Location{City: city}
	// адрес не обрезается до валидации: строка из пробелов — ошибка
	if raw := r.PostForm.Get("address"); raw != "" {
		loc.Address = &raw
	}
	available := true

	in := service.DonationInput{
		OwnerEmail: actor.Email,
		Location:   loc,
		Available:  &available,
	}
	in.DonorName, _ = formValue(r, "name")
	in.Title, _ = formValue(r, "title")
	in.Description, _ = formValue(r, "description")
	in.Category, _ = formValue(r, "category")
	in.Condition, _ = formValue(r, "condition")
	in.ExpirationDate = optionalValue(r, "expiration_date")

	errs := service.ValidateDonation(in)
	if in.Category != "" && !model.IsKnownCategory(in.Category) {
		errs[service.FieldCategory] = "Categoría no válida"
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	imageURL, err := h.saveImage(r)
	if h.imageError(w, err) {
		return
	}

	d, err := h.Donations.Create(r.Context(), in, imageURL)
	if err != nil {
		h.discardImage(r, imageURL)
		h.Logger.Errorw("Create: service error", "owner", actor.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, d.View())
}

func (h *DonationHandler) writeList(w http.ResponseWriter, ds []model.Donation, err error, op string) {
	if err != nil {
		h.Logger.Errorw(op+": service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, model.Views(ds))
}

// ListAvailable — доступные пожертвования
func (h *DonationHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(r); !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	ds, err := h.Donations.List(r.Context(), true)
	h.writeList(w, ds, err, "ListAvailable")
}

// ListAll — все пожертвования, включая недоступные. Публичный маршрут.
func (h *DonationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Donations.List(r.Context(), false)
	h.writeList(w, ds, err, "ListAll")
}

// ListMine — пожертвования текущего пользователя
func (h *DonationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	ds, err := h.Donations.ListByOwner(r.Context(), actor.Email)
	h.writeList(w, ds, err, "ListMine")
}

// Get — одно пожертвование по id
func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(r); !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	d, found, err := h.Donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Errorw("Get: service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d.View())
}

// Toggle инвертирует доступность
func (h *DonationHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(r); !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	found, err := h.Donations.ToggleAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Errorw("Toggle: service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Estado de disponibilidad actualizado"})
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

// SetAvailability явно выставляет доступность из JSON {"available": bool}
func (h *DonationHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(r); !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Available == nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	changed, err := h.Donations.SetAvailability(r.Context(), chi.URLParam(r, "id"), *req.Available)
	if err != nil {
		h.Logger.Errorw("SetAvailability: service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !changed {
		// не найдено и «уже такое значение» неразличимы
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Estado de disponibilidad actualizado", "available": *req.Available})
}

// Modify частично обновляет пожертвование владельца
func (h *DonationHandler) Modify(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	if err := h.parseForm(w, r); err != nil {
		h.formError(w, "Modify", err)
		return
	}
	// временные файлы multipart удаляем сами: net/http чистит только исходный *Request
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	var patch model.DonationPatch
	set := func(dst **string, key string) {
		if v, ok := formValue(r, key); ok {
			*dst = &v
		}
	}
	set(&patch.DonorName, "name")
	set(&patch.Title, "title")
	set(&patch.Description, "description")
	set(&patch.Category, "category")
	set(&patch.Condition, "condition")
	set(&patch.ExpirationDate, "expiration_date")
	set(&patch.City, "city")
	set(&patch.Address, "address")

	if patch.IsEmpty() && !hasImage(r) {
		writeError(w, http.StatusBadRequest, "No hay cambios para aplicar")
		return
	}
	if patch.Category != nil && !model.IsKnownCategory(*patch.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{service.FieldCategory: "Categoría no válida"})
		return
	}

	id := chi.URLParam(r, "id")
	// права проверяем до загрузки, чтобы не сохранять файл зря
	found, err := h.Donations.Authorize(r.Context(), actor, id)
	if !h.modifyResult(w, id, found, err) {
		return
	}

	imageURL, err := h.saveImage(r)
	if h.imageError(w, err) {
		return
	}

	found, err = h.Donations.Modify(r.Context(), actor, id, patch, imageURL)
	if !h.modifyResult(w, id, found, err) {
		// запись исчезла или не обновилась: новый файл никому не нужен
		h.discardImage(r, imageURL)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Publicacion modificada"})
}

// modifyResult отвечает клиенту при отказе. true — можно продолжать.
func (h *DonationHandler) modifyResult(w http.ResponseWriter, id string, found bool, err error) bool {
	switch {
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	case err != nil:
		h.Logger.Errorw("Modify: service error", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	case !found:
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		return true
	}
	return false
}

// Delete удаляет пожертвование владельца
func (h *DonationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	deleted, err := h.Donations.Delete(r.Context(), actor, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, msgForbidden)
	case err != nil:
		h.Logger.Errorw("Delete: service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	case !deleted:
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Donación eliminada"})
	}
}

// DeleteAll удаляет все пожертвования; только для администраторов
func (h *DonationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	if !actor.Admin {
		h.Logger.Warnw("DeleteAll: rejected", "actor", actor.Email)
		writeError(w, http.StatusForbidden, msgForbidden)
		return
	}
	n, err := h.Donations.DeleteAll(r.Context())
	if err != nil {
		h.Logger.Errorw("DeleteAll: service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Donaciones eliminadas", "deleted": n})
}
