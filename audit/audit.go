package audit

import (
	"log"
	"sync"
	"time"

	"lms/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Security-relevant actions recorded in the audit trail.
const (
	ActionUserRegistered    = "USER_REGISTERED"
	ActionLoginSuccess      = "LOGIN_SUCCESS"
	ActionLoginFailed       = "LOGIN_FAILED"
	ActionRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ActionCourseCreated     = "COURSE_CREATED"
	ActionCourseUpdated     = "COURSE_UPDATED"
	ActionCourseDeleted     = "COURSE_DELETED"
	ActionLessonCreated     = "LESSON_CREATED"
	ActionLessonUpdated     = "LESSON_UPDATED"
	ActionLessonDeleted     = "LESSON_DELETED"
	ActionEnrollmentCreated = "ENROLLMENT_CREATED"
	ActionEnrollmentDeleted = "ENROLLMENT_DELETED"
	ActionProgressUpdated   = "PROGRESS_UPDATED"
)

// Resource types referenced by audit entries.
const (
	ResourceUser       = "USER"
	ResourceCourse     = "COURSE"
	ResourceLesson     = "LESSON"
	ResourceEnrollment = "ENROLLMENT"
	ResourceProgress   = "PROGRESS"
	ResourceRequest    = "REQUEST"
)

// Recorder appends audit entries through a buffered channel so the request
// path never waits on the audit write. A full buffer drops the entry with a
// log line; audit durability is best-effort and must not cost availability.
type Recorder struct {
	db      *gorm.DB
	entries chan models.AuditEntry
	done    chan struct{}
	wg      sync.WaitGroup
}

var (
	mu       sync.Mutex
	recorder *Recorder
)

// Start wires the global recorder to db and launches the writer goroutine.
// Calling Start again replaces the previous recorder after draining it.
func Start(db *gorm.DB, buffer int) {
	if buffer <= 0 {
		buffer = 256
	}

	r := &Recorder{
		db:      db,
		entries: make(chan models.AuditEntry, buffer),
		done:    make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writeLoop()

	mu.Lock()
	prev := recorder
	recorder = r
	mu.Unlock()

	if prev != nil {
		prev.stop()
	}
}

// Stop drains pending entries and stops the writer goroutine.
func Stop() {
	mu.Lock()
	r := recorder
	recorder = nil
	mu.Unlock()

	if r != nil {
		r.stop()
	}
}

// Record appends one audit entry. actorID and resourceID are nil when no
// identity or target was resolved (failed login, rate-limit rejection).
// Record never blocks and never returns an error to the caller.
func Record(actorID *uint, action, resourceType string, resourceID *uint, clientAddress string) {
	mu.Lock()
	r := recorder
	mu.Unlock()

	if r == nil {
		log.Printf("Audit recorder not started; dropping %s event", action)
		return
	}

	entry := models.AuditEntry{
		EventID:       uuid.NewString(),
		UserID:        actorID,
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		ClientAddress: clientAddress,
		CreatedAt:     time.Now(),
	}

	select {
	case r.entries <- entry:
	default:
		log.Printf("Audit buffer full; dropping %s event", action)
	}
}

func (r *Recorder) writeLoop() {
	defer r.wg.Done()
	for {
		select {
		case entry := <-r.entries:
			r.persist(entry)
		case <-r.done:
			// Drain whatever is already buffered before exiting.
			for {
				select {
				case entry := <-r.entries:
					r.persist(entry)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) persist(entry models.AuditEntry) {
	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("Error writing audit entry %s: %v", entry.Action, err)
	}
}

func (r *Recorder) stop() {
	close(r.done)
	r.wg.Wait()
}
