package controllers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"grand-hotel-backend/middleware"
	"grand-hotel-backend/services"
	"grand-hotel-backend/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RoomController struct {
	RoomSvc      *services.RoomService
	ExportSvc    *services.ExportService
	ExposeErrors bool
}

func NewRoomController(roomSvc *services.RoomService, exportSvc *services.ExportService, exposeErrors bool) *RoomController {
	return &RoomController{RoomSvc: roomSvc, ExportSvc: exportSvc, ExposeErrors: exposeErrors}
}

// ----------------------------------------------------
// GET /api/rooms
// ----------------------------------------------------
func (ctl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctl.RoomSvc.GetAllRooms(c.Request.Context())
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "", gin.H{
		"count":    len(rooms),
		"chambres": rooms,
	})
}

// ----------------------------------------------------
// GET /api/rooms/:id
// ----------------------------------------------------
func (ctl *RoomController) GetRoomByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Identifiant de chambre invalide", "")
		return
	}

	room, err := ctl.RoomSvc.GetRoomByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "", gin.H{"chambre": room})
}

// ----------------------------------------------------
// POST /api/rooms (JSON body, or multipart with "images" files)
// ----------------------------------------------------
func (ctl *RoomController) CreateRoom(c *gin.Context) {
	var in services.RoomInput
	var sources []services.ImageSource

	files := middleware.UploadedFiles(c)
	if files != nil || strings.HasPrefix(c.ContentType(), "multipart/") {
		in = roomInputFromForm(c)

		opened, closeAll, err := openUploads(files)
		defer closeAll()
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Impossible de lire les fichiers envoyés", err.Error())
			return
		}
		sources = opened
	} else if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("❌ JSON BINDING ERROR (400): %v", err)
		utils.JSONError(c, http.StatusBadRequest, "Données de la chambre invalides", err.Error())
		return
	}

	room, err := ctl.RoomSvc.CreateRoom(c.Request.Context(), in, sources)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Chambre créée avec succès", gin.H{"chambre": room})
}

func roomInputFromForm(c *gin.Context) services.RoomInput {
	in := services.RoomInput{
		Number:      c.PostForm("number"),
		Name:        c.PostForm("name"),
		Type:        c.PostForm("type"),
		Category:    c.PostForm("category"),
		Capacity:    services.Numeric(strings.TrimSpace(c.PostForm("capacity"))),
		Price:       services.Numeric(strings.TrimSpace(c.PostForm("price"))),
		Size:        c.PostForm("size"),
		BedType:     c.PostForm("bedType"),
		Status:      c.PostForm("status"),
		Description: c.PostForm("description"),
	}

	// amenities may come as repeated fields or amenities[]
	amenities := append(c.PostFormArray("amenities"), c.PostFormArray("amenities[]")...)
	for _, a := range amenities {
		if a = strings.TrimSpace(a); a != "" {
			in.Amenities = append(in.Amenities, a)
		}
	}
	for _, u := range c.PostFormArray("images") {
		if u = strings.TrimSpace(u); u != "" {
			in.Images = append(in.Images, services.ImageInput{URL: u})
		}
	}
	return in
}

func openUploads(files []*multipart.FileHeader) ([]services.ImageSource, func(), error) {
	opened := make([]io.Closer, 0, len(files))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	sources := make([]services.ImageSource, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		sources = append(sources, services.FileSource(f, fh.Filename))
	}
	return sources, closeAll, nil
}

// ----------------------------------------------------
// PUT /api/rooms/:id
// ----------------------------------------------------
func (ctl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Identifiant de chambre invalide", "")
		return
	}

	var patch services.RoomPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Données de la chambre invalides", err.Error())
		return
	}

	room, err := ctl.RoomSvc.UpdateRoom(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Chambre mise à jour avec succès", gin.H{"chambre": room})
}

// ----------------------------------------------------
// DELETE /api/rooms/:id (soft delete)
// ----------------------------------------------------
func (ctl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "Identifiant de chambre invalide", "")
		return
	}

	report, err := ctl.RoomSvc.DeleteRoom(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Chambre supprimée avec succès", gin.H{"cleanup": report})
}

// ----------------------------------------------------
// POST /api/rooms/upload/image
// ----------------------------------------------------
func (ctl *RoomController) UploadImage(c *gin.Context) {
	sources, closeAll, err := openUploads(middleware.UploadedFiles(c))
	defer closeAll()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Impossible de lire le fichier envoyé", err.Error())
		return
	}
	if len(sources) == 0 {
		utils.JSONError(c, http.StatusBadRequest, middleware.ErrNoFileUploaded.Error(), "")
		return
	}

	uploaded, err := ctl.RoomSvc.UploadImages(c.Request.Context(), sources[:1])
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Image uploadée avec succès", gin.H{"image": uploaded[0]})
}

// ----------------------------------------------------
// POST /api/rooms/upload/images
// ----------------------------------------------------
func (ctl *RoomController) UploadImages(c *gin.Context) {
	sources, closeAll, err := openUploads(middleware.UploadedFiles(c))
	defer closeAll()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Impossible de lire les fichiers envoyés", err.Error())
		return
	}
	if len(sources) == 0 {
		utils.JSONError(c, http.StatusBadRequest, middleware.ErrNoFileUploaded.Error(), "")
		return
	}

	uploaded, err := ctl.RoomSvc.UploadImages(c.Request.Context(), sources)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	msg := fmt.Sprintf("%d image(s) uploadée(s) avec succès", len(uploaded))
	utils.JSONSuccess(c, http.StatusOK, msg, gin.H{"images": uploaded})
}

// ----------------------------------------------------
// DELETE /api/rooms/images/:filename
// ----------------------------------------------------
func (ctl *RoomController) DeleteImage(c *gin.Context) {
	report, touched, err := ctl.RoomSvc.RemoveImageByKey(c.Request.Context(), c.Param("filename"))
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Image supprimée avec succès", gin.H{
		"roomsUpdated": touched,
		"cleanup":      report,
	})
}

// ----------------------------------------------------
// GET /api/rooms/export
// ----------------------------------------------------
func (ctl *RoomController) ExportRooms(c *gin.Context) {
	var buf bytes.Buffer
	count, err := ctl.ExportSvc.ExportRooms(c.Request.Context(), &buf)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}

	filename := fmt.Sprintf("chambres-%s.xlsx", time.Now().Format("20060102"))
	log.Printf("✅ Exported %d room(s) to %s", count, filename)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
