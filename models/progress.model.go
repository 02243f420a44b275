package models

import "time"

// Progress keeps current state only: CompletedAt is set iff Completed, and
// flipping back to incomplete clears it.
type Progress struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	StudentID   uint       `json:"student_id" gorm:"uniqueIndex:idx_student_lesson;not null"`
	LessonID    uint       `json:"lesson_id" gorm:"uniqueIndex:idx_student_lesson;not null"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Student     User       `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Lesson      Lesson     `json:"-" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
}
