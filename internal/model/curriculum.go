package model

import (
	"sort"
	"time"
)

// Curriculum 用户的课程计划，每个用户唯一
// swagger:model Curriculum
type Curriculum struct {
	UUIDBase
	UserID         uint             `gorm:"uniqueIndex;not null" json:"userId"`
	TotalLessons   int              `gorm:"not null" json:"totalLessons"`
	WeeksDuration  int              `gorm:"not null" json:"weeksDuration"`
	LessonsPerWeek int              `gorm:"not null" json:"lessonsPerWeek"`
	Summary        string           `gorm:"type:text" json:"summary"`
	Source         string           `gorm:"size:20" json:"source"` // provider / fallback
	Weeks          []CurriculumWeek `gorm:"foreignKey:CurriculumID;constraint:OnDelete:CASCADE" json:"weeks"`
	Lessons        []Lesson         `gorm:"foreignKey:CurriculumID;constraint:OnDelete:CASCADE" json:"lessons"`
}

func (Curriculum) TableName() string {
	return "curricula"
}

const (
	CurriculumSourceProvider = "provider"
	CurriculumSourceFallback = "fallback"
)

// CurriculumWeek 课程周，周内课时按 LessonNumber 排序
type CurriculumWeek struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	CurriculumID string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_curriculum_week" json:"curriculumId"`
	WeekNumber   int      `gorm:"not null;uniqueIndex:idx_curriculum_week" json:"weekNumber"`
	Theme        string   `gorm:"size:255" json:"theme"`
	Lessons      []Lesson `gorm:"-" json:"lessons"`
}

func (CurriculumWeek) TableName() string {
	return "curriculum_weeks"
}

// Lesson 课时，编号在整个课程内从 1 开始连续
// swagger:model Lesson
type Lesson struct {
	BaseModel
	CurriculumID    string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_curriculum_lesson" json:"curriculumId"`
	LessonNumber    int        `gorm:"not null;uniqueIndex:idx_curriculum_lesson" json:"lessonNumber"`
	WeekNumber      int        `gorm:"not null" json:"weekNumber"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Objectives      []string   `gorm:"serializer:json;type:text" json:"objectives"`
	Topics          []string   `gorm:"serializer:json;type:text" json:"topics"`
	DurationMinutes int        `gorm:"not null" json:"durationMinutes"`
	Completed       bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// AttachLessons 将课时按周归组，并保证周和课时的顺序
func (c *Curriculum) AttachLessons() {
	sort.Slice(c.Weeks, func(i, j int) bool { return c.Weeks[i].WeekNumber < c.Weeks[j].WeekNumber })
	sort.Slice(c.Lessons, func(i, j int) bool { return c.Lessons[i].LessonNumber < c.Lessons[j].LessonNumber })

	index := make(map[int]int, len(c.Weeks))
	for i := range c.Weeks {
		c.Weeks[i].Lessons = []Lesson{}
		index[c.Weeks[i].WeekNumber] = i
	}
	for _, l := range c.Lessons {
		if i, ok := index[l.WeekNumber]; ok {
			c.Weeks[i].Lessons = append(c.Weeks[i].Lessons, l)
		}
	}
}

// CompletedLessons 已完成课时数
func (c *Curriculum) CompletedLessons() int {
	n := 0
	for _, l := range c.Lessons {
		if l.Completed {
			n++
		}
	}
	return n
}

// NextLesson 编号最小的未完成课时，全部完成时返回 nil
func (c *Curriculum) NextLesson() *Lesson {
	var next *Lesson
	for i := range c.Lessons {
		l := &c.Lessons[i]
		if l.Completed {
			continue
		}
		if next == nil || l.LessonNumber < next.LessonNumber {
			next = l
		}
	}
	return next
}
