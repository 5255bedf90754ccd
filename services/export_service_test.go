package services

import (
	"bytes"
	"context"
	"testing"

	"grand-hotel-backend/repositories"

	"github.com/xuri/excelize/v2"
)

func TestExportRooms_IncludesInactiveRooms(t *testing.T) {
	repo := repositories.NewRoomRepository(newTestDB(t))
	rooms := NewRoomService(repo, &fakeMedia{}, nil)
	ctx := context.Background()

	if _, err := rooms.CreateRoom(ctx, mustInput(t, `{"number":"101","name":"Standard","capacity":2,"price":45000,"amenities":["wifi","tv"]}`), nil); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	gone, err := rooms.CreateRoom(ctx, mustInput(t, `{"number":"102","capacity":1,"price":30000}`), nil)
	if err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if _, err := rooms.DeleteRoom(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteRoom() error = %v", err)
	}

	var buf bytes.Buffer
	n, err := NewExportService(repo).ExportRooms(ctx, &buf)
	if err != nil {
		t.Fatalf("ExportRooms() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ExportRooms() = %v, want %v", n, 2)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %v, want %v", len(rows), 3)
	}
	if rows[0][0] != "Numéro" {
		t.Errorf("header[0] = %v, want %v", rows[0][0], "Numéro")
	}
	if rows[1][0] != "101" || rows[1][1] != "Standard" {
		t.Errorf("row 1 = %v, want room 101", rows[1])
	}
	if rows[1][10] != "wifi, tv" {
		t.Errorf("amenities cell = %v, want %v", rows[1][10], "wifi, tv")
	}
	if rows[2][0] != "102" {
		t.Errorf("row 2 = %v, want inactive room 102", rows[2])
	}
}
