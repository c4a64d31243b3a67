// internal/upload/handler.go
//
// Authenticated asset upload.
//
// Context
// -------
// POST /api/upload takes multipart form data with `file` and `type`.  The
// caller must carry a session (401 otherwise).  `type` names the slot the
// image is for.  Both the declared part Content-Type and the sniffed bytes
// must be an image; SVG is refused because it can carry script.  The object
// is stored at
//
//	<userID>/<type>-<uuid><ext>
//
// and the handler answers {"url": "...", "path": "..."}.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/auth"
	"github.com/yanizio/cardforge/internal/metrics"
	"github.com/yanizio/cardforge/internal/respond"
)

// DefaultMaxBytes caps one upload.
const DefaultMaxBytes = 10 << 20

// Types is the closed set of upload categories.
var Types = map[string]struct{}{
	"headshot":      {},
	"personal-logo": {},
	"broker-logo":   {},
}

// Handler serves the upload endpoint.
type Handler struct {
	store    ObjectStore
	maxBytes int64
	log      *zap.Logger
}

// NewHandler returns a Handler.  maxBytes <= 0 means DefaultMaxBytes.
func NewHandler(store ObjectStore, maxBytes int64, log *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = zap.L()
	}
	return &Handler{store: store, maxBytes: maxBytes, log: log}
}

// Result is the success body.
type Result struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !safeSegment(user.ID) {
		respond.Error(w, http.StatusBadRequest, "invalid user identity")
		return
	}

	// Multipart overhead gets a little headroom above the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+64<<10)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.reject(w, "", http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.reject(w, "", http.StatusBadRequest, "expected multipart form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	kind := r.FormValue("type")
	if _, ok := Types[kind]; !ok {
		h.reject(w, kind, http.StatusBadRequest, "invalid upload type")
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.reject(w, kind, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !isImage(hdr.Header.Get("Content-Type")) {
		h.reject(w, kind, http.StatusBadRequest, "file must be an image")
		return
	}
	sniffed, err := sniff(file)
	if err != nil {
		h.reject(w, kind, http.StatusBadRequest, "unreadable file")
		return
	}
	if !isImage(sniffed.String()) {
		h.reject(w, kind, http.StatusBadRequest, "file must be an image")
		return
	}

	key := path.Join(user.ID, fmt.Sprintf("%s-%s%s", kind, uuid.NewString(), sniffed.Extension()))
	url, err := h.store.Put(r.Context(), key, file, sniffed.String())
	if err != nil {
		h.log.Error("upload store failed", zap.String("key", key), zap.Error(err))
		h.reject(w, kind, http.StatusInternalServerError, "upload failed")
		return
	}

	metrics.Uploads.WithLabelValues(kind, "ok").Inc()
	h.log.Info("asset uploaded",
		zap.String("user", user.ID),
		zap.String("type", kind),
		zap.Int64("bytes", hdr.Size))
	respond.JSON(w, http.StatusOK, Result{URL: url, Path: key})
}

func (h *Handler) reject(w http.ResponseWriter, kind string, status int, msg string) {
	if _, ok := Types[kind]; !ok {
		kind = "unknown"
	}
	metrics.Uploads.WithLabelValues(kind, "rejected").Inc()
	respond.Error(w, status, msg)
}

// sniff detects the content type and rewinds f.
func sniff(f multipart.File) (*mimetype.MIME, error) {
	m, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return m, nil
}

func isImage(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i != -1 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.HasPrefix(ct, "image/") && ct != "image/svg+xml"
}

// safeSegment reports whether id can be used as one path segment.
func safeSegment(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
