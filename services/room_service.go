package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"grand-hotel-backend/models"
	"grand-hotel-backend/repositories"
	"grand-hotel-backend/storage/cloudinary"

	"gorm.io/datatypes"
)

type RoomStore interface {
	FindByNumber(ctx context.Context, number string) (*models.Room, error)
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Save(ctx context.Context, room *models.Room) error
	ListActive(ctx context.Context) ([]models.Room, error)
	PullImageByKey(ctx context.Context, keys ...string) (int, error)
}

type MediaStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (cloudinary.UploadedImage, error)
	Delete(ctx context.Context, storageKey, imageURL string) error
	QualifyKey(name string) string
}

// RoomCache is optional; a nil cache disables caching. Entries are scoped to a generation
// that Invalidate bumps, so a list read before a write is never served after it.
type RoomCache interface {
	Generation(ctx context.Context) (int64, error)
	GetActive(ctx context.Context, gen int64) ([]models.Room, bool, error)
	SetActive(ctx context.Context, gen int64, rooms []models.Room) error
	Invalidate(ctx context.Context) error
}

type CleanupFailure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// CleanupReport collects the outcome of best-effort remote deletions.
type CleanupReport struct {
	Succeeded []string         `json:"succeeded"`
	Failed    []CleanupFailure `json:"failed"`
}

func newCleanupReport() CleanupReport {
	return CleanupReport{Succeeded: []string{}, Failed: []CleanupFailure{}}
}

func (r *CleanupReport) record(key string, err error) {
	if err != nil {
		r.Failed = append(r.Failed, CleanupFailure{Key: key, Reason: err.Error()})
		return
	}
	r.Succeeded = append(r.Succeeded, key)
}

type RoomService struct {
	Rooms RoomStore
	Media MediaStore
	Cache RoomCache
}

func NewRoomService(rooms RoomStore, media MediaStore, cache RoomCache) *RoomService {
	return &RoomService{Rooms: rooms, Media: media, Cache: cache}
}

// ----------------------------------------------------
// CREATE
// ----------------------------------------------------
func (s *RoomService) CreateRoom(ctx context.Context, in RoomInput, files []ImageSource) (*models.Room, error) {
	log.Printf("➡️ RoomService.CreateRoom number=%q files=%d urls=%d", in.Number, len(files), len(in.Images))

	room, err := roomFromInput(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.Rooms.FindByNumber(ctx, room.Number)
	if err != nil {
		return nil, persistenceError("Erreur lors de la création de la chambre", err)
	}
	if existing != nil {
		return nil, conflictError("Une chambre avec ce numéro existe déjà")
	}

	sources := make([]ImageSource, 0, len(files)+len(in.Images))
	sources = append(sources, files...)
	for _, img := range in.Images {
		sources = append(sources, img.Source())
	}

	images, uploaded, err := s.resolveImages(ctx, room.Name, sources)
	if err != nil {
		s.discardUploads(ctx, uploaded)
		return nil, err
	}
	room.Images = datatypes.JSONSlice[models.Image](images)

	if err := s.Rooms.Create(ctx, room); err != nil {
		s.discardUploads(ctx, uploaded)
		if errors.Is(err, repositories.ErrDuplicateNumber) {
			return nil, conflictError("Une chambre avec ce numéro existe déjà")
		}
		log.Printf("❌ RoomService.CreateRoom DB error: %v", err)
		return nil, persistenceError("Erreur lors de la création de la chambre", err)
	}

	s.invalidate(ctx)
	log.Printf("⬅️ RoomService.CreateRoom ok id=%d number=%s images=%d", room.ID, room.Number, len(room.Images))
	return room, nil
}

func roomFromInput(in RoomInput) (*models.Room, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, validationError("Le numéro de chambre est requis")
	}
	if in.Capacity.IsZero() {
		return nil, validationError("La capacité est requise")
	}
	capacity, err := parseCapacity(in.Capacity)
	if err != nil {
		return nil, err
	}
	if in.Price.IsZero() {
		return nil, validationError("Le prix est requis")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.RoomStatusAvailable
	}
	if !models.IsValidRoomStatus(status) {
		return nil, validationError(fmt.Sprintf("Statut invalide: %s", status))
	}

	amenities := []string(in.Amenities)
	if amenities == nil {
		amenities = []string{}
	}

	return &models.Room{
		Number:      number,
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.TrimSpace(in.Type),
		Category:    strings.TrimSpace(in.Category),
		Capacity:    capacity,
		Price:       price,
		Currency:    models.DefaultCurrency,
		Size:        strings.TrimSpace(in.Size),
		BedType:     strings.TrimSpace(in.BedType),
		Status:      status,
		Description: in.Description,
		Amenities:   datatypes.JSONSlice[string](amenities),
		Images:      datatypes.JSONSlice[models.Image]{},
		IsActive:    true,
	}, nil
}

func parseCapacity(n Numeric) (int, error) {
	capacity, err := n.Int()
	if err != nil || capacity <= 0 {
		return 0, validationError("La capacité doit être un entier positif")
	}
	return capacity, nil
}

func parsePrice(n Numeric) (float64, error) {
	price, err := n.Float()
	if err != nil || price < 0 {
		return 0, validationError("Le prix doit être un nombre positif")
	}
	return price, nil
}

// resolveImages turns every source into an Image in submission order. Uploaded keys are
// returned even on failure so the caller can discard them.
func (s *RoomService) resolveImages(ctx context.Context, roomName string, sources []ImageSource) ([]models.Image, []string, error) {
	label := roomName
	if label == "" {
		label = "Chambre"
	}

	images := make([]models.Image, 0, len(sources))
	uploaded := make([]string, 0)
	for i, src := range sources {
		img := models.Image{Alt: fmt.Sprintf("%s - Image %d", label, i+1)}

		switch src.Kind {
		case SourceFileUpload:
			res, err := s.Media.Upload(ctx, src.File, src.Filename)
			if err != nil {
				log.Printf("❌ Upload failed for %s: %v", src.Filename, err)
				return nil, uploaded, newError(ErrPersistence, "Erreur lors de l'upload de l'image", err)
			}
			uploaded = append(uploaded, res.StorageKey)
			img.URL = res.URL
			img.CloudinaryID = res.StorageKey
		case SourceDirectURL:
			if src.URL == "" {
				return nil, uploaded, validationError(fmt.Sprintf("Image %d: url manquante", i+1))
			}
			img.URL = src.URL
			img.CloudinaryID = src.StorageKey
			img.IsPrimary = src.Primary
			if src.Alt != "" {
				img.Alt = src.Alt
			}
		default:
			return nil, uploaded, validationError(fmt.Sprintf("Image %d: source inconnue", i+1))
		}

		images = append(images, img)
	}
	return models.NormalizeImages(images), uploaded, nil
}

func (s *RoomService) discardUploads(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.Media.Delete(ctx, key, ""); err != nil {
			log.Printf("⚠️ Failed to discard orphan upload %s: %v", key, err)
		}
	}
}

// ----------------------------------------------------
// READ
// ----------------------------------------------------
func (s *RoomService) GetAllRooms(ctx context.Context) ([]models.Room, error) {
	// the generation is read before the query; a write in between makes our entry unreachable
	var gen int64
	cached := false
	if s.Cache != nil {
		g, err := s.Cache.Generation(ctx)
		if err != nil {
			log.Printf("⚠️ Room cache read failed: %v", err)
		} else {
			gen, cached = g, true
			rooms, ok, err := s.Cache.GetActive(ctx, gen)
			if err != nil {
				log.Printf("⚠️ Room cache read failed: %v", err)
			} else if ok {
				return rooms, nil
			}
		}
	}

	rooms, err := s.Rooms.ListActive(ctx)
	if err != nil {
		return nil, persistenceError("Erreur lors de la récupération des chambres", err)
	}
	if rooms == nil {
		rooms = []models.Room{}
	}

	if cached {
		if err := s.Cache.SetActive(ctx, gen, rooms); err != nil {
			log.Printf("⚠️ Room cache write failed: %v", err)
		}
	}
	return rooms, nil
}

// GetRoomByID also returns inactive rooms.
func (s *RoomService) GetRoomByID(ctx context.Context, id uint) (*models.Room, error) {
	room, err := s.Rooms.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrRoomNotFound) {
		return nil, notFoundError("Chambre non trouvée")
	}
	if err != nil {
		return nil, persistenceError("Erreur lors de la récupération de la chambre", err)
	}
	return room, nil
}

// ----------------------------------------------------
// UPDATE: supplied fields are applied, omitted fields are kept
// ----------------------------------------------------
func (s *RoomService) UpdateRoom(ctx context.Context, id uint, patch RoomPatch) (*models.Room, error) {
	log.Printf("➡️ RoomService.UpdateRoom id=%d", id)

	room, err := s.GetRoomByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Number != nil {
		number := strings.TrimSpace(*patch.Number)
		if number == "" {
			return nil, validationError("Le numéro de chambre est requis")
		}
		if number != room.Number {
			existing, err := s.Rooms.FindByNumber(ctx, number)
			if err != nil {
				return nil, persistenceError("Erreur lors de la mise à jour de la chambre", err)
			}
			if existing != nil && existing.ID != room.ID {
				return nil, conflictError("Une chambre avec ce numéro existe déjà")
			}
		}
		room.Number = number
	}
	if err := applyPatch(room, patch); err != nil {
		return nil, err
	}

	if err := s.Rooms.Save(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrDuplicateNumber) {
			return nil, conflictError("Une chambre avec ce numéro existe déjà")
		}
		log.Printf("❌ RoomService.UpdateRoom DB error id=%d: %v", id, err)
		return nil, persistenceError("Erreur lors de la mise à jour de la chambre", err)
	}

	s.invalidate(ctx)
	log.Printf("⬅️ RoomService.UpdateRoom ok id=%d", id)
	return room, nil
}

func applyPatch(room *models.Room, p RoomPatch) error {
	// activity only changes through DeleteRoom, and never back
	if p.IsActive != nil {
		return validationError("Le champ isActive ne peut pas être modifié, utilisez la suppression de la chambre")
	}
	if p.Name != nil {
		room.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		room.Type = strings.TrimSpace(*p.Type)
	}
	if p.Category != nil {
		room.Category = strings.TrimSpace(*p.Category)
	}
	if p.Capacity != nil {
		capacity, err := parseCapacity(*p.Capacity)
		if err != nil {
			return err
		}
		room.Capacity = capacity
	}
	if p.Price != nil {
		price, err := parsePrice(*p.Price)
		if err != nil {
			return err
		}
		room.Price = price
	}
	if p.Size != nil {
		room.Size = strings.TrimSpace(*p.Size)
	}
	if p.BedType != nil {
		room.BedType = strings.TrimSpace(*p.BedType)
	}
	if p.Status != nil {
		status := strings.TrimSpace(*p.Status)
		if !models.IsValidRoomStatus(status) {
			return validationError(fmt.Sprintf("Statut invalide: %s", status))
		}
		room.Status = status
	}
	if p.Description != nil {
		room.Description = *p.Description
	}
	if p.Amenities != nil {
		amenities := []string(*p.Amenities)
		if amenities == nil {
			amenities = []string{}
		}
		room.Amenities = datatypes.JSONSlice[string](amenities)
	}
	if p.Images != nil {
		images := make([]models.Image, 0, len(*p.Images))
		for i, in := range *p.Images {
			if strings.TrimSpace(in.URL) == "" {
				return validationError(fmt.Sprintf("Image %d: url manquante", i+1))
			}
			alt := in.Alt
			if alt == "" {
				alt = fmt.Sprintf("%s - Image %d", room.Name, i+1)
			}
			images = append(images, models.Image{
				URL:          strings.TrimSpace(in.URL),
				CloudinaryID: strings.TrimSpace(in.CloudinaryID),
				Alt:          alt,
				IsPrimary:    in.IsPrimary,
			})
		}
		room.Images = datatypes.JSONSlice[models.Image](images)
	}

	room.Images = datatypes.JSONSlice[models.Image](models.NormalizeImages(room.Images))
	return nil
}

// ----------------------------------------------------
// DELETE (soft)
// ----------------------------------------------------

// DeleteRoom marks the room inactive after a best-effort cleanup of its remote images.
// Calling it on an already inactive room is a no-op.
func (s *RoomService) DeleteRoom(ctx context.Context, id uint) (CleanupReport, error) {
	log.Printf("➡️ RoomService.DeleteRoom id=%d", id)
	report := newCleanupReport()

	room, err := s.GetRoomByID(ctx, id)
	if err != nil {
		return report, err
	}
	if !room.IsActive {
		log.Printf("⚠️ Room %d already inactive", id)
		return report, nil
	}

	// the soft delete must not depend on the client staying connected
	cleanupCtx := context.WithoutCancel(ctx)
	for _, img := range room.Images {
		key := img.CloudinaryID
		if key == "" {
			key = img.URL
		}
		err := s.Media.Delete(cleanupCtx, img.CloudinaryID, img.URL)
		if err != nil {
			log.Printf("⚠️ Cloudinary cleanup failed for %s: %v", key, err)
		}
		report.record(key, err)
	}

	room.IsActive = false
	if err := s.Rooms.Save(ctx, room); err != nil {
		log.Printf("❌ RoomService.DeleteRoom DB error id=%d: %v", id, err)
		return report, persistenceError("Erreur lors de la suppression de la chambre", err)
	}

	s.invalidate(ctx)
	log.Printf("⬅️ RoomService.DeleteRoom ok id=%d images ok=%d failed=%d", id, len(report.Succeeded), len(report.Failed))
	return report, nil
}

// RemoveImageByKey deletes an image from the media host (failures ignored) and pulls it
// from every room that references it. It returns the number of rooms modified.
func (s *RoomService) RemoveImageByKey(ctx context.Context, filename string) (CleanupReport, int, error) {
	report := newCleanupReport()

	name := strings.Trim(strings.TrimSpace(filename), "/")
	if name == "" {
		return report, 0, validationError("Identifiant d'image manquant")
	}
	key := s.Media.QualifyKey(name)

	err := s.Media.Delete(context.WithoutCancel(ctx), key, "")
	if err != nil {
		log.Printf("⚠️ Cloudinary delete failed for %s: %v", key, err)
	}
	report.record(key, err)

	touched, err := s.Rooms.PullImageByKey(ctx, key, name)
	if err != nil {
		return report, 0, persistenceError("Erreur lors de la suppression de l'image", err)
	}
	if touched > 0 {
		s.invalidate(ctx)
	}
	log.Printf("✅ Image %s pulled from %d room(s)", key, touched)
	return report, touched, nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		log.Printf("⚠️ Room cache invalidation failed: %v", err)
	}
}

// UploadImages pushes standalone uploads to the media host. On failure the images already
// uploaded in this batch are discarded.
func (s *RoomService) UploadImages(ctx context.Context, files []ImageSource) ([]cloudinary.UploadedImage, error) {
	out := make([]cloudinary.UploadedImage, 0, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		res, err := s.Media.Upload(ctx, f.File, f.Filename)
		if err != nil {
			log.Printf("❌ Upload failed for %s: %v", f.Filename, err)
			s.discardUploads(ctx, keys)
			return nil, newError(ErrPersistence, "Erreur lors de l'upload de l'image", err)
		}
		keys = append(keys, res.StorageKey)
		out = append(out, res)
	}
	return out, nil
}
