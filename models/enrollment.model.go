package models

import "time"

// The composite unique index is the authoritative duplicate-enrollment guard;
// the controller pre-check only exists to produce a clean 409.
type Enrollment struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	StudentID  uint      `json:"student_id" gorm:"uniqueIndex:idx_student_course;not null"`
	CourseID   uint      `json:"course_id" gorm:"uniqueIndex:idx_student_course;not null"`
	EnrolledAt time.Time `json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Student    User      `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Course     Course    `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}
