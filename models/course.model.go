package models

import "time"

type Course struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Title        string    `json:"title" gorm:"not null"`
	Description  string    `json:"description"`
	InstructorID uint      `json:"instructor_id" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Instructor   User      `json:"-" gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE"`
}
