package controllers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Danish34pixel/Meditrap/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const defaultMaxFileSize = 5 << 20 // 5MB

// UploadController handles image uploads. Files land on local disk first and
// are forwarded to the CDN when one is configured.
type UploadController struct {
	Dir       string
	MaxSize   int64
	KeepLocal bool
	CDN       *utils.CloudinaryUploader
}

// NewUploadController builds an UploadController from environment settings
func NewUploadController() *UploadController {
	dir := os.Getenv("UPLOAD_PATH")
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatal("Error creating upload directory: ", err)
	}

	maxSize := int64(defaultMaxFileSize)
	if raw := os.Getenv("MAX_FILE_SIZE"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxSize = parsed
		}
	}

	keepLocal := true
	if raw := os.Getenv("UPLOAD_KEEP_LOCAL"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			keepLocal = parsed
		}
	}

	return &UploadController{
		Dir:       dir,
		MaxSize:   maxSize,
		KeepLocal: keepLocal,
		CDN:       utils.NewCloudinaryUploader(),
	}
}

type uploadedFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
	Size     int64  `json:"size"`
}

// saveOne stores a single multipart file and returns its serving location.
func (upc *UploadController) saveOne(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*uploadedFile, error) {
	if header.Size > upc.MaxSize {
		return nil, fmt.Errorf("file exceeds the %d byte limit", upc.MaxSize)
	}

	// Sniff the real content type rather than trusting the extension.
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not read file")
	}
	if !strings.HasPrefix(http.DetectContentType(buf[:n]), "image/") {
		return nil, fmt.Errorf("only image files are allowed")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("could not read file")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := "image-" + uuid.NewString() + ext
	localPath := filepath.Join(upc.Dir, filename)

	dst, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("could not store file")
	}
	written, err := io.Copy(dst, io.LimitReader(file, upc.MaxSize+1))
	dst.Close()
	if err != nil || written > upc.MaxSize {
		os.Remove(localPath)
		if written > upc.MaxSize {
			return nil, fmt.Errorf("file exceeds the %d byte limit", upc.MaxSize)
		}
		return nil, fmt.Errorf("could not store file")
	}

	result := &uploadedFile{
		Filename: filename,
		URL:      "/uploads/" + filename,
		Size:     written,
	}

	if upc.CDN != nil {
		url, publicID, err := upc.CDN.Upload(ctx, localPath)
		if err != nil {
			// CDN failure keeps the local copy serving the file.
			log.Printf("CDN upload failed for %s, serving local copy: %v", filename, err)
		} else {
			result.URL = url
			result.PublicID = publicID
			if !upc.KeepLocal {
				if err := os.Remove(localPath); err != nil {
					log.Printf("Could not remove local copy of %s: %v", filename, err)
				}
			}
		}
	}

	return result, nil
}

// UploadImage handles a single image upload under the "image" field
func (upc *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upc.MaxSize+1<<20)
	if err := r.ParseMultipartForm(upc.MaxSize); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	saved, err := upc.saveOne(r.Context(), file, header)
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.Created(w, "Image uploaded successfully", saved)
}

// UploadImages handles up to ten images under the "images" field
func (upc *UploadController) UploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10*upc.MaxSize)
	if err := r.ParseMultipartForm(upc.MaxSize); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		utils.Fail(w, http.StatusBadRequest, "No image files provided")
		return
	}
	if len(headers) > 10 {
		utils.Fail(w, http.StatusBadRequest, "A maximum of 10 images can be uploaded at once")
		return
	}

	saved := []*uploadedFile{}
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			upc.removeSaved(saved)
			utils.Fail(w, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		result, err := upc.saveOne(r.Context(), file, header)
		file.Close()
		if err != nil {
			upc.removeSaved(saved)
			utils.Fail(w, http.StatusBadRequest, err.Error())
			return
		}
		saved = append(saved, result)
	}

	utils.WriteJSON(w, http.StatusCreated, utils.Response{
		Success: true,
		Message: "Images uploaded successfully",
		Count:   utils.IntPtr(len(saved)),
		Data:    saved,
	})
}

// removeSaved drops the local copies of files from a batch that failed
// part way, so a rejected batch leaves nothing behind.
func (upc *UploadController) removeSaved(saved []*uploadedFile) {
	for _, s := range saved {
		if err := os.Remove(filepath.Join(upc.Dir, s.Filename)); err != nil && !os.IsNotExist(err) {
			log.Printf("Could not remove %s after failed batch: %v", s.Filename, err)
		}
	}
}

// ListFiles returns the locally stored upload filenames
func (upc *UploadController) ListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(upc.Dir)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error reading uploads")
		return
	}

	files := []uploadedFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, uploadedFile{
			Filename: entry.Name(),
			URL:      "/uploads/" + entry.Name(),
			Size:     info.Size(),
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Count:   utils.IntPtr(len(files)),
		Data:    files,
	})
}

// cleanName rejects path traversal in a user-supplied filename.
func cleanName(name string) (string, bool) {
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." || strings.Contains(name, "..") {
		return "", false
	}
	return base, true
}

// GetFileInfo returns metadata about one stored file
func (upc *UploadController) GetFileInfo(w http.ResponseWriter, r *http.Request) {
	name, ok := cleanName(mux.Vars(r)["filename"])
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	info, err := os.Stat(filepath.Join(upc.Dir, name))
	if err != nil || info.IsDir() {
		utils.Fail(w, http.StatusNotFound, "File not found")
		return
	}

	utils.Success(w, "", map[string]interface{}{
		"filename":   name,
		"url":        "/uploads/" + name,
		"size":       info.Size(),
		"modifiedAt": info.ModTime().Format(time.RFC3339),
	})
}

// DeleteFile removes a locally stored file
func (upc *UploadController) DeleteFile(w http.ResponseWriter, r *http.Request) {
	name, ok := cleanName(mux.Vars(r)["filename"])
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	path := filepath.Join(upc.Dir, name)
	if _, err := os.Stat(path); err != nil {
		utils.Fail(w, http.StatusNotFound, "File not found")
		return
	}
	if err := os.Remove(path); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error deleting file")
		return
	}

	utils.Success(w, "File deleted successfully", nil)
}
