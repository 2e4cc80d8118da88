package model

// CurriculumPlan 课程生成结果（AI 返回或模板生成），持久化前的结构
type CurriculumPlan struct {
	TotalLessons   int        `json:"totalLessons"`
	WeeksDuration  int        `json:"weeksDuration"`
	LessonsPerWeek int        `json:"lessonsPerWeek"`
	Weeks          []PlanWeek `json:"weeks"`
	Summary        string     `json:"summary"`
	Source         string     `json:"-"`
}

type PlanWeek struct {
	WeekNumber int          `json:"weekNumber"`
	Theme      string       `json:"theme"`
	Lessons    []PlanLesson `json:"lessons"`
}

type PlanLesson struct {
	LessonNumber int      `json:"lessonNumber"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Objectives   []string `json:"objectives"`
	Duration     int      `json:"duration"`
	Topics       []string `json:"topics"`
}

// LessonCount 所有周的课时总数
func (p *CurriculumPlan) LessonCount() int {
	n := 0
	for _, w := range p.Weeks {
		n += len(w.Lessons)
	}
	return n
}
