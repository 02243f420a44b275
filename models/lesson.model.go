package models

import "time"

// Lesson ordering is advisory: order_index is caller-supplied and neither
// unique nor contiguous within a course.
type Lesson struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	CourseID   uint      `json:"course_id" gorm:"index;not null"`
	Title      string    `json:"title" gorm:"not null"`
	Content    string    `json:"content"`
	OrderIndex int       `json:"order_index" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Course     Course    `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}
