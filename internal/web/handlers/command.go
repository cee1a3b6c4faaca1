package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/edalquez/facegate/internal/command"
)

// CommandHandler serves the command/result exchange: the operator console
// issues commands, the camera polls them, and both sides read results.
type CommandHandler struct {
	commands *command.Store
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(commands *command.Store) *CommandHandler {
	return &CommandHandler{commands: commands}
}

type captureRequest struct {
	Mode          string `json:"mode"`
	Name          string `json:"name"`
	YearLevel     string `json:"year_level"`
	GuardianName  string `json:"guardian_name"`
	GuardianEmail string `json:"guardian_email"`
}

// Capture issues a capture command for the camera's next poll. Any command
// already outstanding is replaced.
func (h *CommandHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	mode, err := command.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.commands.Issue(mode, command.Registration{
		StudentName:   req.Name,
		YearLevel:     req.YearLevel,
		GuardianName:  req.GuardianName,
		GuardianEmail: req.GuardianEmail,
	})
	if errors.Is(err, command.ErrNameRequired) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue command")
		return
	}

	log.Printf("capture command issued: mode=%s name=%s", mode, sanitizeForLog(req.Name))
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "capture command issued",
		"mode":    mode,
	})
}

// Poll is called by the camera to ask for work.
func (h *CommandHandler) Poll(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.commands.Poll())
}

// Result is called by the operator console waiting for a capture outcome.
func (h *CommandHandler) Result(w http.ResponseWriter, r *http.Request) {
	res, ok, pending := h.commands.PollResult()
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":  command.StatusWaiting,
			"pending": pending,
		})
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Clear resets the command and result slots.
func (h *CommandHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.commands.Clear()
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
