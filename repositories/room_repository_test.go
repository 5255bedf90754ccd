package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"grand-hotel-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Room{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newRoom(number string, active bool, keys ...string) *models.Room {
	images := make([]models.Image, 0, len(keys))
	for _, k := range keys {
		images = append(images, models.Image{URL: "https://cdn.test/" + k + ".jpg", CloudinaryID: k})
	}
	return &models.Room{
		Number:    number,
		Capacity:  2,
		Price:     100,
		Currency:  models.DefaultCurrency,
		Status:    models.RoomStatusAvailable,
		Amenities: datatypes.JSONSlice[string]{},
		Images:    datatypes.JSONSlice[models.Image](models.NormalizeImages(images)),
		IsActive:  active,
	}
}

func TestRoomRepository_CreateDuplicateNumber(t *testing.T) {
	repo := NewRoomRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, newRoom("101", false)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, newRoom("101", true)); !errors.Is(err, ErrDuplicateNumber) {
		t.Errorf("Create(duplicate) error = %v, want ErrDuplicateNumber", err)
	}
}

func TestRoomRepository_FindByNumber(t *testing.T) {
	repo := NewRoomRepository(newTestDB(t))
	ctx := context.Background()

	got, err := repo.FindByNumber(ctx, "404")
	if err != nil || got != nil {
		t.Errorf("FindByNumber(absent) = %v, %v, want nil, nil", got, err)
	}

	if err := repo.Create(ctx, newRoom("404", false)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err = repo.FindByNumber(ctx, "404")
	if err != nil || got == nil {
		t.Fatalf("FindByNumber(inactive) = %v, %v, want the room", got, err)
	}
	if got.IsActive {
		t.Errorf("IsActive = %v, want %v", got.IsActive, false)
	}
}

func TestRoomRepository_FindByIDNotFound(t *testing.T) {
	repo := NewRoomRepository(newTestDB(t))
	if _, err := repo.FindByID(context.Background(), 12); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("FindByID() error = %v, want ErrRoomNotFound", err)
	}
}

func TestRoomRepository_ListActive(t *testing.T) {
	repo := NewRoomRepository(newTestDB(t))
	ctx := context.Background()

	for _, r := range []*models.Room{newRoom("3", true), newRoom("1", true), newRoom("2", false)} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 2 || active[0].Number != "1" || active[1].Number != "3" {
		t.Errorf("ListActive() = %v, want rooms 1 and 3", active)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(ListAll()) = %v, want %v", len(all), 3)
	}
}

func TestRoomRepository_PullImageByKeyMatchesExactly(t *testing.T) {
	repo := NewRoomRepository(newTestDB(t))
	ctx := context.Background()

	a := newRoom("A", true, "grand-hotel/rooms/room_1", "grand-hotel/rooms/room_10")
	b := newRoom("B", false, "grand-hotel/rooms/room_10")
	c := newRoom("C", true, "room_1")
	for _, r := range []*models.Room{a, b, c} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	touched, err := repo.PullImageByKey(ctx, "grand-hotel/rooms/room_1", "room_1")
	if err != nil {
		t.Fatalf("PullImageByKey() error = %v", err)
	}
	if touched != 2 {
		t.Errorf("touched = %v, want %v", touched, 2)
	}

	gotA, _ := repo.FindByID(ctx, a.ID)
	if len(gotA.Images) != 1 || gotA.Images[0].CloudinaryID != "grand-hotel/rooms/room_10" {
		t.Errorf("room A images = %v, want only room_10", gotA.Images)
	}
	if !gotA.Images[0].IsPrimary || gotA.Images[0].Order != 0 {
		t.Errorf("room A image = %+v, want primary at order 0", gotA.Images[0])
	}
	gotB, _ := repo.FindByID(ctx, b.ID)
	if len(gotB.Images) != 1 {
		t.Errorf("room B images = %v, want untouched", gotB.Images)
	}
	gotC, _ := repo.FindByID(ctx, c.ID)
	if len(gotC.Images) != 0 {
		t.Errorf("room C images = %v, want none", gotC.Images)
	}
}

func TestRoomRepository_PullImageByKeyNoKeys(t *testing.T) {
	repo := NewRoomRepository(newTestDB(t))
	touched, err := repo.PullImageByKey(context.Background(), "", "")
	if err != nil || touched != 0 {
		t.Errorf("PullImageByKey() = %v, %v, want 0, nil", touched, err)
	}
}
