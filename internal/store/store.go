package store

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Moderated-Gallery/Gallery-Service/internal/models"
)

var (
	// ErrNotFound is returned when the target image id does not exist.
	ErrNotFound = errors.New("image not found")
	// ErrInvalidStatus is returned for a status value outside pending/approved/rejected.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrActorRequired is returned when a moderation call omits the acting user.
	ErrActorRequired = errors.New("actor is required")
)

// ImageStore holds all image records in memory and writes the full document
// through its Backend on every mutation. Individual operations are serialized
// by the mutex; there is no transactional isolation across requests — two
// concurrent updates to the same id race at merge granularity and the last
// full-snapshot write wins.
type ImageStore struct {
	mu      sync.RWMutex
	images  []models.Image
	nextID  int
	backend Backend
}

// New loads prior state from the backend. An unreadable or corrupt backend is
// logged and the store starts empty rather than failing the process.
func New(backend Backend) *ImageStore {
	s := &ImageStore{backend: backend, nextID: 1}

	state, err := backend.Load()
	if err != nil {
		log.Printf("[Store] failed to load image data, starting empty: %v", err)
		return s
	}

	s.images = state.Images
	s.nextID = state.NextID
	// Re-seed the counter if the stored document lags behind its own records
	for _, img := range s.images {
		if img.ID >= s.nextID {
			s.nextID = img.ID + 1
		}
	}
	return s
}

// persist writes the current document through the backend. Callers hold mu.
// A failed write is logged and the in-memory state kept; memory and disk may
// diverge until the next successful write.
func (s *ImageStore) persist() {
	state := State{Images: s.images, NextID: s.nextID}
	if err := s.backend.Save(state); err != nil {
		log.Printf("[Store] failed to persist image data: %v", err)
	}
}

// Create assigns the next id, appends the record and persists it.
func (s *ImageStore) Create(img models.Image) models.Image {
	s.mu.Lock()
	defer s.mu.Unlock()

	img.ID = s.nextID
	s.nextID++
	s.images = append(s.images, img)
	s.persist()
	return img
}

// Get returns the record for id, or false when absent.
func (s *ImageStore) Get(id int) (models.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, img := range s.images {
		if img.ID == id {
			return img, true
		}
	}
	return models.Image{}, false
}

// List returns a copy of all records in insertion order.
func (s *ImageStore) List() []models.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Image, len(s.images))
	copy(out, s.images)
	return out
}

// ListByStatus returns all records with the given status.
func (s *ImageStore) ListByStatus(status models.ImageStatus) ([]models.Image, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Image, 0)
	for _, img := range s.images {
		if img.Status == status {
			out = append(out, img)
		}
	}
	return out, nil
}

// Update merges the patch into the existing record and persists. A status
// change into a terminal state clears the opposite direction's moderation
// fields so the record never carries both sets at once.
func (s *ImageStore) Update(id int, patch models.ImagePatch) (models.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.images {
		if s.images[i].ID != id {
			continue
		}
		applyPatch(&s.images[i], patch)
		s.persist()
		return s.images[i], true
	}
	return models.Image{}, false
}

// Delete removes the record and persists. Returns whether a record existed.
func (s *ImageStore) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.images {
		if s.images[i].ID == id {
			s.images = append(s.images[:i], s.images[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Approve marks the record approved, stamping the current date and actor.
// It is not guarded by current state: approving an already approved or
// rejected record succeeds and re-stamps the metadata.
func (s *ImageStore) Approve(id int, approvedBy string) (models.Image, error) {
	if approvedBy == "" {
		return models.Image{}, ErrActorRequired
	}

	status := models.StatusApproved
	date := currentDate()
	img, ok := s.Update(id, models.ImagePatch{
		Status:       &status,
		ApprovedDate: &date,
		ApprovedBy:   &approvedBy,
	})
	if !ok {
		return models.Image{}, ErrNotFound
	}
	return img, nil
}

// Reject marks the record rejected. The reason is stored exactly as given;
// an empty reason is omitted from the record.
func (s *ImageStore) Reject(id int, rejectedBy, rejectionReason string) (models.Image, error) {
	if rejectedBy == "" {
		return models.Image{}, ErrActorRequired
	}

	status := models.StatusRejected
	date := currentDate()
	img, ok := s.Update(id, models.ImagePatch{
		Status:          &status,
		RejectedDate:    &date,
		RejectedBy:      &rejectedBy,
		RejectionReason: &rejectionReason,
	})
	if !ok {
		return models.Image{}, ErrNotFound
	}
	return img, nil
}

func applyPatch(img *models.Image, patch models.ImagePatch) {
	if patch.Status != nil {
		img.Status = *patch.Status
		// Exactly one direction's fields may be set at any time
		switch *patch.Status {
		case models.StatusApproved:
			img.RejectedDate = ""
			img.RejectedBy = ""
			img.RejectionReason = ""
		case models.StatusRejected:
			img.ApprovedDate = ""
			img.ApprovedBy = ""
		case models.StatusPending:
			img.ApprovedDate = ""
			img.ApprovedBy = ""
			img.RejectedDate = ""
			img.RejectedBy = ""
			img.RejectionReason = ""
		}
	}
	if patch.Title != nil {
		img.Title = *patch.Title
	}
	if patch.Tags != nil {
		img.Tags = *patch.Tags
	}
	if patch.ApprovedDate != nil {
		img.ApprovedDate = *patch.ApprovedDate
	}
	if patch.ApprovedBy != nil {
		img.ApprovedBy = *patch.ApprovedBy
	}
	if patch.RejectedDate != nil {
		img.RejectedDate = *patch.RejectedDate
	}
	if patch.RejectedBy != nil {
		img.RejectedBy = *patch.RejectedBy
	}
	if patch.RejectionReason != nil {
		img.RejectionReason = *patch.RejectionReason
	}
}

func currentDate() string {
	return time.Now().UTC().Format("2006-01-02")
}
