// Package workflow is the attendance decision engine. It takes a captured
// image plus a declared mode and resolves it to exactly one capture result,
// consulting the matcher, the stores and the notifier along the way.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/edalquez/facegate/internal/command"
	"github.com/edalquez/facegate/internal/gallery"
	"github.com/edalquez/facegate/internal/notify"
	"github.com/edalquez/facegate/internal/store"
	"github.com/edalquez/facegate/internal/uploads"
)

// ErrNoImage is returned when a capture arrives without image bytes.
var ErrNoImage = errors.New("image data is required")

// Notifier hands guardian notifications off without blocking.
type Notifier interface {
	Enqueue(n notify.Notification) bool
}

// CaptureInput is one capture attempt as submitted over any transport.
type CaptureInput struct {
	Mode         command.Mode
	Registration command.Registration // name plus optional guardian metadata
	ImageData    []byte
}

// Service resolves capture attempts. All paths end in a well-formed result
// that is both returned to the caller and published to the command store.
type Service struct {
	commands   *command.Store
	matcher    *gallery.Matcher
	attendance store.AttendanceStore
	students   store.StudentStore
	uploads    *uploads.Store
	notifier   Notifier
	window     time.Duration

	now func() time.Time
}

func New(commands *command.Store, matcher *gallery.Matcher,
	attendance store.AttendanceStore, students store.StudentStore,
	up *uploads.Store, notifier Notifier, window time.Duration) *Service {
	return &Service{
		commands:   commands,
		matcher:    matcher,
		attendance: attendance,
		students:   students,
		uploads:    up,
		notifier:   notifier,
		window:     window,
		now:        time.Now,
	}
}

// Resolve runs one capture attempt to its terminal result. The returned
// error is non-nil only for caller-fixable input problems (missing image,
// missing registration name, no detectable face on register); even then the
// result is well formed and already published, so pollers are never left
// waiting.
func (s *Service) Resolve(ctx context.Context, in CaptureInput) (command.Result, error) {
	var (
		res command.Result
		err error
	)
	if len(in.ImageData) == 0 {
		res = errorResult("no image data received")
		err = ErrNoImage
	} else if in.Mode == command.ModeRegister {
		res, err = s.register(ctx, in)
	} else {
		res = s.recognize(ctx, in)
	}
	s.commands.PublishResult(res)
	return res, err
}

func (s *Service) register(ctx context.Context, in CaptureInput) (command.Result, error) {
	reg := s.mergeRegistration(in.Registration)
	if reg.StudentName == "" {
		return errorResult("student name is required for registration"), command.ErrNameRequired
	}

	embedding, err := s.matcher.Embed(ctx, in.ImageData)
	if errors.Is(err, gallery.ErrNoFaceDetected) {
		return errorResult("no face detected in the image"), err
	}
	if err != nil {
		log.Printf("embedding failed for registration of %s: %v", reg.StudentName, err)
		return errorResult("face processing failed"), nil
	}

	imageRef, err := s.uploads.SaveImage(in.ImageData, "register")
	if err != nil {
		log.Printf("failed to save reference image for %s: %v", reg.StudentName, err)
		return errorResult("failed to store reference image"), nil
	}

	err = s.students.Upsert(ctx, store.StudentRecord{
		Name:          reg.StudentName,
		YearLevel:     reg.YearLevel,
		GuardianName:  reg.GuardianName,
		GuardianEmail: reg.GuardianEmail,
		ImageRef:      imageRef,
		Embedding:     embedding,
	})
	if err != nil {
		log.Printf("failed to upsert student %s: %v", reg.StudentName, err)
		return errorResult("failed to save student record"), nil
	}

	// The next recognition must already see the new identity, so the
	// reload happens before the result is produced.
	if _, err := s.ReloadGallery(ctx); err != nil {
		log.Printf("gallery reload after registering %s failed: %v", reg.StudentName, err)
		return errorResult("student saved but gallery reload failed"), nil
	}

	log.Printf("registered %s (gallery size %d)", reg.StudentName, s.matcher.Gallery().Size())
	return command.Result{
		Status:    command.StatusRegistered,
		Message:   fmt.Sprintf("%s registered successfully", reg.StudentName),
		Name:      reg.StudentName,
		Timestamp: s.now().Format(time.RFC3339),
	}, nil
}

func (s *Service) recognize(ctx context.Context, in CaptureInput) command.Result {
	match, err := s.matcher.Match(ctx, in.ImageData)
	if errors.Is(err, gallery.ErrNoFaceDetected) {
		return command.Result{
			Status:  command.StatusUnknown,
			Message: "no face detected in the image",
		}
	}
	if err != nil {
		log.Printf("face matching failed: %v", err)
		return errorResult("face matching failed")
	}
	if !match.Matched {
		return command.Result{
			Status:  command.StatusUnknown,
			Message: "face not recognized",
		}
	}

	logType := store.LogIn
	if in.Mode == command.ModeLogout {
		logType = store.LogOut
	}

	ts := s.now()
	confidence := math.Round(match.Confidence*100) / 100

	imageRef, err := s.uploads.SaveImage(in.ImageData, strings.ToLower(string(in.Mode)))
	if err != nil {
		// The capture frame is evidence, not a prerequisite for the log.
		log.Printf("failed to save capture image for %s: %v", match.Name, err)
		imageRef = ""
	}

	id, duplicate, err := s.attendance.LogAttendance(ctx, store.AttendanceRecord{
		StudentName: match.Name,
		LogType:     logType,
		Timestamp:   ts,
		Confidence:  &confidence,
		ImageRef:    imageRef,
	}, s.window)
	if err != nil {
		log.Printf("failed to log attendance for %s: %v", match.Name, err)
		return errorResult("failed to save attendance record")
	}
	if duplicate {
		return command.Result{
			Status:  command.StatusDuplicate,
			Message: fmt.Sprintf("%s already logged %s within the last %s", match.Name, logType, s.window),
			Name:    match.Name,
			LogType: string(logType),
		}
	}

	s.dispatchNotification(ctx, match.Name, logType, ts, imageRef, id)

	return command.Result{
		Status:     command.StatusSuccess,
		Message:    fmt.Sprintf("%s logged %s", match.Name, logType),
		Name:       match.Name,
		LogType:    string(logType),
		Confidence: &confidence,
		RecordID:   &id,
		Timestamp:  ts.Format(time.RFC3339),
	}
}

func (s *Service) dispatchNotification(ctx context.Context, name string, logType store.LogType, ts time.Time, imageRef string, recordID int64) {
	student, err := s.students.Get(ctx, name)
	if err != nil {
		log.Printf("student lookup for notification failed: %v", err)
		return
	}
	if student == nil {
		log.Printf("no student record for %s, skipping notification", name)
		return
	}

	imagePath := ""
	if imageRef != "" {
		imagePath = filepath.Join(s.uploads.Dir(), imageRef)
	}

	enqueued := s.notifier.Enqueue(notify.Notification{
		GuardianEmail: student.GuardianEmail,
		GuardianName:  student.GuardianName,
		StudentName:   name,
		YearLevel:     student.YearLevel,
		LogType:       logType,
		Timestamp:     ts,
		ImagePath:     imagePath,
	})
	if !enqueued {
		return
	}
	if err := s.attendance.MarkNotified(ctx, recordID); err != nil {
		log.Printf("failed to mark record %d notified: %v", recordID, err)
	}
}

// mergeRegistration combines transport-supplied metadata with the pending
// command's registration. Transport fields win when set, so the camera's
// X-Student-Name header can override the stored name.
func (s *Service) mergeRegistration(in command.Registration) command.Registration {
	cur := s.commands.Current().Registration
	out := cur
	if in.StudentName != "" {
		out.StudentName = in.StudentName
	}
	if in.YearLevel != "" {
		out.YearLevel = in.YearLevel
	}
	if in.GuardianName != "" {
		out.GuardianName = in.GuardianName
	}
	if in.GuardianEmail != "" {
		out.GuardianEmail = in.GuardianEmail
	}
	return out
}

// GallerySize reports how many identities the matcher currently knows.
func (s *Service) GallerySize() int {
	return s.matcher.Gallery().Size()
}

// ReloadGallery rebuilds the matcher's gallery from stored embeddings and
// swaps it in atomically. Returns the number of loaded identities.
func (s *Service) ReloadGallery(ctx context.Context) (int, error) {
	records, err := s.students.ListWithEmbeddings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load student embeddings: %w", err)
	}
	identities := make([]gallery.Identity, 0, len(records))
	for _, rec := range records {
		identities = append(identities, gallery.Identity{
			Name:      rec.Name,
			Embedding: rec.Embedding,
		})
	}
	s.matcher.Gallery().Load(identities)
	return len(identities), nil
}

func errorResult(msg string) command.Result {
	return command.Result{Status: command.StatusError, Message: msg}
}
