package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"grand-hotel-backend/config"
	"grand-hotel-backend/models"
	"grand-hotel-backend/storage/cloudinary"

	"github.com/google/uuid"
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

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeMedia records every call; failDelete makes all deletions fail.
type fakeMedia struct {
	failDelete bool
	failUpload bool

	uploads []string
	deletes []string
}

func (m *fakeMedia) Upload(ctx context.Context, file io.Reader, filename string) (cloudinary.UploadedImage, error) {
	if m.failUpload {
		return cloudinary.UploadedImage{}, &cloudinary.RemoteStorageError{Key: filename, Op: "upload", Err: errors.New("boom")}
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return cloudinary.UploadedImage{}, err
	}
	m.uploads = append(m.uploads, filename)
	id := fmt.Sprintf("room-%d", len(m.uploads))
	return cloudinary.UploadedImage{
		URL:        "https://res.cloudinary.com/test/image/upload/v1/grand-hotel/rooms/" + id + ".jpg",
		StorageKey: "grand-hotel/rooms/" + id,
	}, nil
}

func (m *fakeMedia) Delete(ctx context.Context, storageKey, imageURL string) error {
	key := storageKey
	if key == "" {
		key = imageURL
	}
	m.deletes = append(m.deletes, key)
	if m.failDelete {
		return &cloudinary.RemoteStorageError{Key: key, Op: "destroy", Err: errors.New("service unavailable")}
	}
	return nil
}

func (m *fakeMedia) QualifyKey(name string) string {
	return cloudinary.Disabled{}.QualifyKey(name)
}

// fakeCache mirrors the generation scheme of the redis room cache.
type fakeCache struct {
	gen           int64
	lists         map[int64][]models.Room
	sets          int
	invalidations int
}

func (c *fakeCache) Generation(ctx context.Context) (int64, error) {
	return c.gen, nil
}

func (c *fakeCache) GetActive(ctx context.Context, gen int64) ([]models.Room, bool, error) {
	rooms, ok := c.lists[gen]
	return rooms, ok, nil
}

func (c *fakeCache) SetActive(ctx context.Context, gen int64, rooms []models.Room) error {
	if c.lists == nil {
		c.lists = make(map[int64][]models.Room)
	}
	c.lists[gen] = rooms
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.gen++
	c.invalidations++
	return nil
}

// hookedStore runs afterList once, between the database read and the cache write.
type hookedStore struct {
	RoomStore
	afterList func()
}

func (s *hookedStore) ListActive(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.RoomStore.ListActive(ctx)
	if s.afterList != nil {
		hook := s.afterList
		s.afterList = nil
		hook()
	}
	return rooms, err
}

// blindStore hides existing rooms from FindByNumber, as a concurrent create would.
type blindStore struct {
	RoomStore
}

func (blindStore) FindByNumber(ctx context.Context, number string) (*models.Room, error) {
	return nil, nil
}
