package upload

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/geoiq/gateway/internal/response"
)

// Handler holds HTTP handlers for the upload and download endpoints.
type Handler struct {
	svc         *Service
	log         *zap.Logger
	memoryLimit int64
}

// NewHandler creates a new upload Handler. memoryLimit is the multipart size
// kept in memory; larger files are buffered in temporary files.
func NewHandler(svc *Service, log *zap.Logger, memoryLimit int64) *Handler {
	return &Handler{svc: svc, log: log, memoryLimit: memoryLimit}
}

// Up godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns OK while the process is running. Backing stores are not checked.
//	@Tags			health
//	@Produce		plain
//	@Success		200	{string}	string	"OK"
//	@Router			/up [get]
func (h *Handler) Up(w http.ResponseWriter, _ *http.Request) {
	response.Text(w, http.StatusOK, "OK")
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the file in the bucket under its original filename, overwriting any previous object with that name, and records the upload.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	Result
//	@Failure		400		{string}	string	"No file part in the request"
//	@Failure		500		{string}	string	"An error occurred: ..."
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.memoryLimit); err != nil {
		h.log.Debug("parse multipart form", zap.Error(err))
		response.BadRequest(w, "No file part in the request")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			// A "file" part with an empty filename is parsed as a plain form value.
			if _, ok := r.MultipartForm.Value["file"]; ok {
				response.BadRequest(w, "No selected file")
				return
			}
			response.BadRequest(w, "No file part in the request")
			return
		}
		response.InternalError(w, err)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		response.BadRequest(w, "No selected file")
		return
	}

	contentType, err := resolveContentType(file, header.Header.Get("Content-Type"))
	if err != nil {
		response.InternalError(w, err)
		return
	}

	res, err := h.svc.Upload(r.Context(), header.Filename, file, header.Size, contentType)
	if err != nil {
		if h.svc.IsValidation(err) {
			response.BadRequest(w, "No selected file")
			return
		}
		h.log.Error("upload failed", zap.String("key", header.Filename), zap.Error(err))
		response.InternalError(w, err)
		return
	}

	response.OK(w, res)
}

// GetFile godoc
//
//	@Summary		Download a file
//	@Description	Returns the stored bytes with the content type reported by the object store.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			filename	path		string	true	"Object key"
//	@Success		200			{file}		file
//	@Failure		404			{string}	string	"File not found"
//	@Failure		500			{string}	string	"An error occurred: ..."
//	@Router			/file/{filename} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	// chi routes on the escaped path when one is present.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	obj, err := h.svc.Fetch(r.Context(), name)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "File not found")
			return
		}
		h.log.Error("fetch failed", zap.String("key", name), zap.Error(err))
		response.InternalError(w, err)
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = genericContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Body)
}
