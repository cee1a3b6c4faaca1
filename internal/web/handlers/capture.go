package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/edalquez/facegate/internal/command"
	"github.com/edalquez/facegate/internal/workflow"
)

// maxImageSize bounds a single capture upload.
const maxImageSize = 10 << 20

// CaptureHandler accepts captured images over every supported transport:
// the camera's raw/multipart POST and the browser's multipart or base64
// JSON uploads.
type CaptureHandler struct {
	workflow *workflow.Service
}

// NewCaptureHandler creates a new capture handler.
func NewCaptureHandler(wf *workflow.Service) *CaptureHandler {
	return &CaptureHandler{workflow: wf}
}

// Recognize handles the camera's capture submission. The mode comes from the
// X-Capture-Mode header (empty means attendance) and a register capture may
// carry the student name in X-Student-Name.
func (h *CaptureHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	mode, err := command.ParseMode(r.Header.Get("X-Capture-Mode"))
	if err != nil {
		respondCaptureError(w, err)
		return
	}

	image, reg, err := parseCapture(r)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	if name := r.Header.Get("X-Student-Name"); name != "" {
		reg.StudentName = name
	}

	h.resolve(w, r, workflow.CaptureInput{
		Mode:         mode,
		Registration: reg,
		ImageData:    image,
	})
}

// Register handles browser-side registration uploads.
func (h *CaptureHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.direct(w, r, command.ModeRegister)
}

// WebAttendance handles browser-side attendance uploads.
func (h *CaptureHandler) WebAttendance(w http.ResponseWriter, r *http.Request) {
	h.direct(w, r, command.ModeAttendance)
}

// WebLogout handles browser-side logout uploads.
func (h *CaptureHandler) WebLogout(w http.ResponseWriter, r *http.Request) {
	h.direct(w, r, command.ModeLogout)
}

func (h *CaptureHandler) direct(w http.ResponseWriter, r *http.Request, mode command.Mode) {
	image, reg, err := parseCapture(r)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	h.resolve(w, r, workflow.CaptureInput{
		Mode:         mode,
		Registration: reg,
		ImageData:    image,
	})
}

// respondCaptureError rejects a capture before the workflow runs. The body
// is shaped like a capture result so every caller sees a status field.
func respondCaptureError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, command.Result{
		Status:  command.StatusError,
		Message: err.Error(),
	})
}

// resolve runs the workflow and maps its outcome onto HTTP. Business
// outcomes (unknown, duplicate) stay 200; caller-fixable input problems are
// 400 and internal failures 500. The result is always the response body.
func (h *CaptureHandler) resolve(w http.ResponseWriter, r *http.Request, in workflow.CaptureInput) {
	res, err := h.workflow.Resolve(r.Context(), in)
	switch {
	case err != nil:
		respondJSON(w, http.StatusBadRequest, res)
	case res.Status == command.StatusError:
		respondJSON(w, http.StatusInternalServerError, res)
	default:
		respondJSON(w, http.StatusOK, res)
	}
}

type jsonCapture struct {
	ImageData     string `json:"image_data"`
	Name          string `json:"name"`
	YearLevel     string `json:"year_level"`
	GuardianName  string `json:"guardian_name"`
	GuardianEmail string `json:"guardian_email"`
}

// parseCapture extracts the image bytes and any registration metadata from
// the request, whatever the transport: multipart form, JSON with base64
// image_data, or a raw body.
func parseCapture(r *http.Request) ([]byte, command.Registration, error) {
	var reg command.Registration
	ct := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			return nil, reg, errInvalidMultipart
		}
		reg = command.Registration{
			StudentName:   r.FormValue("name"),
			YearLevel:     r.FormValue("year_level"),
			GuardianName:  r.FormValue("guardian_name"),
			GuardianEmail: r.FormValue("guardian_email"),
		}
		for _, field := range []string{"image", "file"} {
			file, _, err := r.FormFile(field)
			if err != nil {
				continue
			}
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
			if err != nil {
				return nil, reg, errImageRead
			}
			return data, reg, nil
		}
		return nil, reg, errNoImagePart

	case strings.HasPrefix(ct, "application/json"):
		var req jsonCapture
		if err := json.NewDecoder(io.LimitReader(r.Body, maxImageSize)).Decode(&req); err != nil {
			return nil, reg, errInvalidJSONCapture
		}
		reg = command.Registration{
			StudentName:   req.Name,
			YearLevel:     req.YearLevel,
			GuardianName:  req.GuardianName,
			GuardianEmail: req.GuardianEmail,
		}
		data, err := decodeBase64Image(req.ImageData)
		if err != nil {
			return nil, reg, err
		}
		return data, reg, nil

	default:
		data, err := io.ReadAll(io.LimitReader(r.Body, maxImageSize))
		if err != nil {
			return nil, reg, errImageRead
		}
		return data, reg, nil
	}
}

// decodeBase64Image accepts plain base64 or a data URL.
func decodeBase64Image(s string) ([]byte, error) {
	if s == "" {
		return nil, errNoImagePart
	}
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		s = s[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errInvalidBase64
	}
	return data, nil
}
