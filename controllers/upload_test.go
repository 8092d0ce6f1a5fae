package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newTestUploadController(t *testing.T) *UploadController {
	t.Helper()
	return &UploadController{
		Dir:       t.TempDir(),
		MaxSize:   1 << 20,
		KeepLocal: true,
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(content)
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	upc := newTestUploadController(t)

	body, contentType := multipartBody(t, "image", "license.png", pngHeader)
	r := httptest.NewRequest("POST", "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	upc.UploadImage(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Filename string `json:"filename"`
			URL      string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if filepath.Ext(resp.Data.Filename) != ".png" {
		t.Errorf("filename %q should keep the extension", resp.Data.Filename)
	}
	if resp.Data.URL != "/uploads/"+resp.Data.Filename {
		t.Errorf("url = %q", resp.Data.URL)
	}
	if _, err := os.Stat(filepath.Join(upc.Dir, resp.Data.Filename)); err != nil {
		t.Errorf("file not stored: %v", err)
	}
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	upc := newTestUploadController(t)

	body, contentType := multipartBody(t, "image", "notes.txt", []byte("just some text"))
	r := httptest.NewRequest("POST", "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	upc.UploadImage(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	entries, _ := os.ReadDir(upc.Dir)
	if len(entries) != 0 {
		t.Errorf("rejected upload must not leave files behind")
	}
}

func TestUploadImageMissingField(t *testing.T) {
	upc := newTestUploadController(t)

	body, contentType := multipartBody(t, "wrong", "license.png", pngHeader)
	r := httptest.NewRequest("POST", "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	upc.UploadImage(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadImagesFailureRemovesSavedFiles(t *testing.T) {
	upc := newTestUploadController(t)

	// Two valid images followed by a text file. The batch must be rejected
	// as a whole, with nothing left on disk.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range []struct {
		name    string
		content []byte
	}{
		{"one.png", pngHeader},
		{"two.png", pngHeader},
		{"notes.txt", []byte("just some text")},
	} {
		part, err := writer.CreateFormFile("images", f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(f.content)
	}
	writer.Close()

	r := httptest.NewRequest("POST", "/api/upload/images", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	upc.UploadImages(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	entries, err := os.ReadDir(upc.Dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("rejected batch left %d files behind", len(entries))
	}
}

func TestUploadImagesStoresEach(t *testing.T) {
	upc := newTestUploadController(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range []string{"one.png", "two.png"} {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(pngHeader)
	}
	writer.Close()

	r := httptest.NewRequest("POST", "/api/upload/images", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	upc.UploadImages(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	entries, _ := os.ReadDir(upc.Dir)
	if len(entries) != 2 {
		t.Errorf("stored %d files, want 2", len(entries))
	}
}

func uploadRouter(upc *UploadController) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/upload", upc.ListFiles).Methods("GET")
	router.HandleFunc("/api/upload/{filename}", upc.GetFileInfo).Methods("GET")
	router.HandleFunc("/api/upload/{filename}", upc.DeleteFile).Methods("DELETE")
	return router
}

func TestListFiles(t *testing.T) {
	upc := newTestUploadController(t)
	os.WriteFile(filepath.Join(upc.Dir, "a.png"), pngHeader, 0o644)
	os.WriteFile(filepath.Join(upc.Dir, "b.png"), pngHeader, 0o644)

	w := httptest.NewRecorder()
	uploadRouter(upc).ServeHTTP(w, httptest.NewRequest("GET", "/api/upload", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestDeleteFile(t *testing.T) {
	upc := newTestUploadController(t)
	path := filepath.Join(upc.Dir, "a.png")
	os.WriteFile(path, pngHeader, 0o644)

	router := uploadRouter(upc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/upload/a.png", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists")
	}

	// Deleting again reports not found.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/upload/a.png", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetFileInfoNotFound(t *testing.T) {
	upc := newTestUploadController(t)

	w := httptest.NewRecorder()
	uploadRouter(upc).ServeHTTP(w, httptest.NewRequest("GET", "/api/upload/missing.png", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCleanNameRejectsTraversal(t *testing.T) {
	for _, name := range []string{"../secret", "..", "a/../../b", "dir/file.png"} {
		if _, ok := cleanName(name); ok {
			t.Errorf("cleanName(%q) accepted a traversal", name)
		}
	}
	if got, ok := cleanName("image-abc.png"); !ok || got != "image-abc.png" {
		t.Errorf("cleanName rejected a plain filename: %q %v", got, ok)
	}
}
