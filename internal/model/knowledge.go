package model

type KnowledgeType string

const (
	KnowledgeVocabulary KnowledgeType = "vocabulary"
	KnowledgeGrammar    KnowledgeType = "grammar"
	KnowledgePhrase     KnowledgeType = "phrase"
	KnowledgeSkill      KnowledgeType = "skill"
)

func (t KnowledgeType) Valid() bool {
	switch t {
	case KnowledgeVocabulary, KnowledgeGrammar, KnowledgePhrase, KnowledgeSkill:
		return true
	}
	return false
}

// KnowledgeItem 用户学到的词汇/语法/短语/技能
// swagger:model KnowledgeItem
type KnowledgeItem struct {
	BaseModel
	UserID          uint          `gorm:"index:idx_user_knowledge;not null" json:"userId"`
	KnowledgeType   KnowledgeType `gorm:"size:20;index:idx_user_knowledge;not null" json:"knowledgeType"`
	Content         string        `gorm:"size:500;not null" json:"content"`
	Translation     string        `gorm:"size:500" json:"translation"`
	Context         string        `gorm:"type:text" json:"context"`
	ConfidenceScore float64       `gorm:"default:0" json:"confidenceScore"` // [0,1]
	PracticeCount   int           `gorm:"default:0" json:"practiceCount"`
	LessonID        *uint         `gorm:"index" json:"lessonId,omitempty"`
}

func (KnowledgeItem) TableName() string {
	return "user_knowledge"
}
