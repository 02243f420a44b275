package audit

import (
	"testing"
	"time"

	"lms/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openAuditDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.AuditEntry{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func waitForEntries(t *testing.T, db *gorm.DB, want int64) []models.AuditEntry {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var count int64
		db.Model(&models.AuditEntry{}).Count(&count)
		if count >= want {
			var entries []models.AuditEntry
			db.Order("id asc").Find(&entries)
			return entries
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d audit entries", want)
	return nil
}

func TestRecordPersistsEntry(t *testing.T) {
	db := openAuditDB(t)
	Start(db, 16)
	defer Stop()

	actor := uint(9)
	resource := uint(3)
	Record(&actor, ActionCourseCreated, ResourceCourse, &resource, "10.0.0.1")

	entries := waitForEntries(t, db, 1)

	entry := entries[0]
	if entry.UserID == nil || *entry.UserID != 9 {
		t.Errorf("UserID = %v, want 9", entry.UserID)
	}
	if entry.Action != ActionCourseCreated {
		t.Errorf("Action = %q, want %q", entry.Action, ActionCourseCreated)
	}
	if entry.ResourceType != ResourceCourse {
		t.Errorf("ResourceType = %q, want %q", entry.ResourceType, ResourceCourse)
	}
	if entry.ResourceID == nil || *entry.ResourceID != 3 {
		t.Errorf("ResourceID = %v, want 3", entry.ResourceID)
	}
	if entry.ClientAddress != "10.0.0.1" {
		t.Errorf("ClientAddress = %q, want 10.0.0.1", entry.ClientAddress)
	}
	if entry.EventID == "" {
		t.Error("EventID is empty")
	}
}

func TestRecordNilActor(t *testing.T) {
	db := openAuditDB(t)
	Start(db, 16)
	defer Stop()

	Record(nil, ActionRateLimitExceeded, ResourceRequest, nil, "10.0.0.2")

	entries := waitForEntries(t, db, 1)
	if entries[0].UserID != nil {
		t.Errorf("UserID = %v, want nil", entries[0].UserID)
	}
}

func TestStopDrainsBufferedEntries(t *testing.T) {
	db := openAuditDB(t)
	Start(db, 64)

	for i := 0; i < 20; i++ {
		Record(nil, ActionLoginFailed, ResourceUser, nil, "10.0.0.3")
	}
	Stop()

	var count int64
	db.Model(&models.AuditEntry{}).Count(&count)
	if count != 20 {
		t.Fatalf("entries after Stop = %d, want 20", count)
	}
}

func TestRecordWithoutStartDoesNotPanic(t *testing.T) {
	Stop()
	Record(nil, ActionLoginFailed, ResourceUser, nil, "10.0.0.4")
}
