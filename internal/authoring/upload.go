package authoring

import (
	"sync"

	"brainscore-quiz-service/internal/domain"
)

// UploadStatus describes the outstanding upload of a draft.
type UploadStatus struct {
	Question int `json:"question"`
	Percent  int `json:"percent"`
}

// UploadTracker allows one outstanding media upload per draft key. While a slot
// is held, saving that draft is refused.
type UploadTracker struct {
	mu    sync.Mutex
	slots map[string]UploadStatus
}

func NewUploadTracker() *UploadTracker {
	return &UploadTracker{slots: make(map[string]UploadStatus)}
}

// Begin claims the slot for key on behalf of question.
func (t *UploadTracker) Begin(key string, question int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.slots[key]; busy {
		return domain.ErrUploadInProgress
	}
	t.slots[key] = UploadStatus{Question: question}
	return nil
}

// Progress records percent for the outstanding upload of key, if any.
func (t *UploadTracker) Progress(key string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, ok := t.slots[key]
	if !ok {
		return
	}
	status.Percent = percent
	t.slots[key] = status
}

// Finish releases the slot, on success or failure.
func (t *UploadTracker) Finish(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.slots, key)
}

// Status reports the outstanding upload for key.
func (t *UploadTracker) Status(key string) (UploadStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	status, ok := t.slots[key]
	return status, ok
}

// Busy reports whether key has an outstanding upload.
func (t *UploadTracker) Busy(key string) bool {
	_, ok := t.Status(key)
	return ok
}
