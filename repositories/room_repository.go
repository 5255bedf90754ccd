package repositories

import (
	"context"
	"errors"

	"grand-hotel-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoomRepository struct {
	DB *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{DB: db}
}

// FindByNumber returns nil, nil when no room (active or not) carries number.
func (r *RoomRepository) FindByNumber(ctx context.Context, number string) (*models.Room, error) {
	var room models.Room
	err := r.DB.WithContext(ctx).Where("number = ?", number).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.DB.WithContext(ctx).First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	err := r.DB.WithContext(ctx).Create(room).Error
	if isDuplicateKey(err) {
		return ErrDuplicateNumber
	}
	return err
}

func (r *RoomRepository) Save(ctx context.Context, room *models.Room) error {
	err := r.DB.WithContext(ctx).Save(room).Error
	if isDuplicateKey(err) {
		return ErrDuplicateNumber
	}
	return err
}

func (r *RoomRepository) ListActive(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("number ASC").
		Find(&rooms).Error
	return rooms, err
}

// ListAll includes inactive rooms; used by the inventory export.
func (r *RoomRepository) ListAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.DB.WithContext(ctx).Order("number ASC").Find(&rooms).Error
	return rooms, err
}

// PullImageByKey removes every embedded image whose cloudinaryId equals one of keys,
// across all rooms, and returns how many rooms were modified.
func (r *RoomRepository) PullImageByKey(ctx context.Context, keys ...string) (int, error) {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k != "" {
			wanted[k] = true
		}
	}
	if len(wanted) == 0 {
		return 0, nil
	}

	touched := 0
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// text match narrows the scan; the exact comparison happens below
		column := imagesText(tx)
		cond := tx.Session(&gorm.Session{NewDB: true})
		first := true
		for k := range wanted {
			if first {
				cond = cond.Where(column+" LIKE ?", "%"+k+"%")
				first = false
				continue
			}
			cond = cond.Or(column+" LIKE ?", "%"+k+"%")
		}

		var rooms []models.Room
		if err := tx.Where(cond).Find(&rooms).Error; err != nil {
			return err
		}

		for _, room := range rooms {
			kept := make([]models.Image, 0, len(room.Images))
			for _, img := range room.Images {
				if !wanted[img.CloudinaryID] {
					kept = append(kept, img)
				}
			}
			if len(kept) == len(room.Images) {
				continue
			}

			images := datatypes.JSONSlice[models.Image](models.NormalizeImages(kept))
			if err := tx.Model(&models.Room{}).Where("id = ?", room.ID).Update("images", images).Error; err != nil {
				return err
			}
			touched++
		}
		return nil
	})
	return touched, err
}

func imagesText(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "CAST(images AS TEXT)"
	case "mysql":
		return "CAST(images AS CHAR)"
	default:
		return "images"
	}
}
