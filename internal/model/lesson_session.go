package model

import "time"

// LessonSession 一次学习会话
// swagger:model LessonSession
type LessonSession struct {
	BaseModel
	UserID          uint       `gorm:"index;not null" json:"userId"`
	LessonID        uint       `gorm:"index;not null" json:"lessonId"`
	StartedAt       time.Time  `gorm:"not null;index" json:"startedAt"`
	CompletedAt     *time.Time `gorm:"index" json:"completedAt,omitempty"`
	DurationMinutes int        `gorm:"default:0" json:"durationMinutes"`
	Lesson          *Lesson    `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
}

func (LessonSession) TableName() string {
	return "lesson_sessions"
}
