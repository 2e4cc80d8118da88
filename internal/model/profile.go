package model

import (
	"fmt"
)

// MaxTimelineWeeks 学习周期上限，十年
const MaxTimelineWeeks = 520

type Level string

const (
	LevelBeginner Level = "beginner"
	LevelA1       Level = "A1"
	LevelA2       Level = "A2"
	LevelB1       Level = "B1"
	LevelB2       Level = "B2"
	LevelC1       Level = "C1"
	LevelC2       Level = "C2"
)

// 等级从低到高排列
var levelOrder = []Level{LevelBeginner, LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Rank 返回等级序号，未知等级返回 -1
func (l Level) Rank() int {
	for i, v := range levelOrder {
		if v == l {
			return i
		}
	}
	return -1
}

func (l Level) Valid() bool {
	return l.Rank() >= 0
}

type LearningGoal string

const (
	GoalBusinessTrip LearningGoal = "business_trip"
	GoalTourism      LearningGoal = "tourism"
	GoalConversation LearningGoal = "conversation"
	GoalAcademic     LearningGoal = "academic"
	GoalFluency      LearningGoal = "fluency"
)

func (g LearningGoal) Valid() bool {
	switch g {
	case GoalBusinessTrip, GoalTourism, GoalConversation, GoalAcademic, GoalFluency:
		return true
	}
	return false
}

type StudyFrequency string

const (
	FrequencyDaily      StudyFrequency = "daily"
	FrequencyThreeWeek  StudyFrequency = "3x_week"
	FrequencyTwiceWeek  StudyFrequency = "2x_week"
	FrequencyOnceWeekly StudyFrequency = "weekly"
)

func (f StudyFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyThreeWeek, FrequencyTwiceWeek, FrequencyOnceWeekly:
		return true
	}
	return false
}

type TutorPersonality string

const (
	PersonalityEncouraging    TutorPersonality = "encouraging"
	PersonalitySarcastic      TutorPersonality = "sarcastic"
	PersonalityDetailOriented TutorPersonality = "detail_oriented"
	PersonalityFun            TutorPersonality = "fun"
	PersonalityFormal         TutorPersonality = "formal"
)

func (p TutorPersonality) Valid() bool {
	switch p {
	case PersonalityEncouraging, PersonalitySarcastic, PersonalityDetailOriented, PersonalityFun, PersonalityFormal:
		return true
	}
	return false
}

// Profile 用户学习档案，每个用户唯一
// swagger:model Profile
type Profile struct {
	BaseModel
	UserID           uint             `gorm:"uniqueIndex;not null" json:"userId"`
	TargetLanguage   string           `gorm:"size:50;default:'french'" json:"targetLanguage"`
	CurrentLevel     Level            `gorm:"size:20;not null" json:"currentLevel"`
	LearningGoal     LearningGoal     `gorm:"size:30;not null" json:"learningGoal"`
	TimelineWeeks    int              `gorm:"not null" json:"timelineWeeks"`
	StudyFrequency   StudyFrequency   `gorm:"size:20;not null" json:"studyFrequency"`
	SessionDuration  int              `gorm:"not null" json:"sessionDuration"`
	IncludesHomework bool             `gorm:"default:false" json:"includesHomework"`
	TutorPersonality TutorPersonality `gorm:"size:30;not null" json:"tutorPersonality"`
}

func (Profile) TableName() string {
	return "user_profiles"
}

// ProfileError 档案字段校验失败
type ProfileError struct {
	Field  string
	Reason string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate 校验档案字段，生成课程前必须通过
func (p *Profile) Validate() error {
	if !p.CurrentLevel.Valid() {
		return &ProfileError{Field: "currentLevel", Reason: fmt.Sprintf("unknown level %q", p.CurrentLevel)}
	}
	if !p.LearningGoal.Valid() {
		return &ProfileError{Field: "learningGoal", Reason: fmt.Sprintf("unknown goal %q", p.LearningGoal)}
	}
	if p.TimelineWeeks <= 0 {
		return &ProfileError{Field: "timelineWeeks", Reason: "must be positive"}
	}
	if p.TimelineWeeks > MaxTimelineWeeks {
		return &ProfileError{Field: "timelineWeeks", Reason: fmt.Sprintf("must be at most %d", MaxTimelineWeeks)}
	}
	if !p.StudyFrequency.Valid() {
		return &ProfileError{Field: "studyFrequency", Reason: fmt.Sprintf("unknown frequency %q", p.StudyFrequency)}
	}
	if p.SessionDuration <= 0 {
		return &ProfileError{Field: "sessionDuration", Reason: "must be positive"}
	}
	if !p.TutorPersonality.Valid() {
		return &ProfileError{Field: "tutorPersonality", Reason: fmt.Sprintf("unknown personality %q", p.TutorPersonality)}
	}
	return nil
}
