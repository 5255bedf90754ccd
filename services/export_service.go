package services

import (
	"context"
	"io"
	"strings"

	"grand-hotel-backend/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Chambres"

var exportHeader = []interface{}{
	"Numéro", "Nom", "Type", "Catégorie", "Capacité", "Prix", "Devise",
	"Taille", "Lit", "Statut", "Équipements", "Images", "Active",
}

type RoomLister interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

// ExportService writes the room inventory, inactive rooms included, as an xlsx workbook.
type ExportService struct {
	Rooms RoomLister
}

func NewExportService(rooms RoomLister) *ExportService {
	return &ExportService{Rooms: rooms}
}

func (s *ExportService) ExportRooms(ctx context.Context, w io.Writer) (int, error) {
	rooms, err := s.Rooms.ListAll(ctx)
	if err != nil {
		return 0, persistenceError("Erreur lors de l'export des chambres", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, persistenceError("Erreur lors de l'export des chambres", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return 0, persistenceError("Erreur lors de l'export des chambres", err)
	}

	for i, r := range rooms {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, persistenceError("Erreur lors de l'export des chambres", err)
		}
		row := []interface{}{
			r.Number, r.Name, r.Type, r.Category, r.Capacity, r.Price, r.Currency,
			r.Size, r.BedType, r.Status, strings.Join(r.Amenities, ", "), len(r.Images), r.IsActive,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, persistenceError("Erreur lors de l'export des chambres", err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, err
	}
	return len(rooms), nil
}
