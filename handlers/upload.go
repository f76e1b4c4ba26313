package handlers

import (
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/storefront/utils"
)

const maxUploadSize = 5 << 20

type upload struct {
	contentType string
	data        []byte
}

// Upload accepts an image either as the multipart field "file" or as a JSON
// body {"file": "<base64>"} and answers with its public URL.
func (b *Backend) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var data []byte
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		f, _, err := r.FormFile("file")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer f.Close()
		if data, err = io.ReadAll(f); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "failed to read file")
			return
		}
	default:
		var body struct {
			File string `json:"file"`
		}
		if err := utils.DecodeJSON(r, &body); err != nil || body.File == "" {
			utils.RespondError(w, http.StatusBadRequest, "file is required")
			return
		}
		encoded := body.File
		if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
			encoded = encoded[i+1:]
		}
		var err error
		if data, err = base64.StdEncoding.DecodeString(encoded); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "file is not valid base64")
			return
		}
	}
	if len(data) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "file is empty")
		return
	}

	id := newID()
	b.mu.Lock()
	b.uploads[id] = upload{contentType: http.DetectContentType(data), data: data}
	b.mu.Unlock()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	utils.RespondData(w, http.StatusCreated, map[string]string{"url": scheme + "://" + r.Host + "/uploads/" + id})
}

func (b *Backend) ServeUpload(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	up, ok := b.uploads[mux.Vars(r)["id"]]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", up.contentType)
	w.Write(up.data)
}
