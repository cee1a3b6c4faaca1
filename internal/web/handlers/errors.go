package handlers

import "errors"

var (
	errInvalidMultipart   = errors.New("invalid multipart form")
	errInvalidJSONCapture = errors.New("invalid json capture body")
	errNoImagePart        = errors.New("no image provided")
	errImageRead          = errors.New("failed to read image data")
	errInvalidBase64      = errors.New("invalid base64 image data")
)
