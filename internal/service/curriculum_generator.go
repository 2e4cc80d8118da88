package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/pkg/logger"
	"lingua_tutor_backend/pkg/monitoring"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	MaxCurriculumLessons    = 50
	curriculumMaxTokens     = 4000
	defaultLessonsPerWeek   = 2
	fallbackLessonsPerTheme = 3
	operationCurriculum     = "curriculum"
)

var lessonsPerWeekByFrequency = map[model.StudyFrequency]int{
	model.FrequencyDaily:      5,
	model.FrequencyThreeWeek:  3,
	model.FrequencyTwiceWeek:  2,
	model.FrequencyOnceWeekly: 1,
}

var weekThemes = []string{
	"Foundations & Essentials",
	"Building Conversations",
	"Daily Life & Routines",
	"Food & Dining",
	"Travel & Transportation",
	"Shopping & Services",
	"Work & Business",
	"Social Interactions",
	"Culture & Entertainment",
	"Advanced Conversations",
	"Specialized Topics",
	"Review & Practice",
}

var lessonTitles = [][fallbackLessonsPerTheme]string{
	{"Greetings & Introduction", "Numbers & Basic Questions", "Ordering Food & Drinks"},
	{"Directions & Transportation", "Shopping & Bargaining", "Making Appointments"},
	{"Daily Routine", "Talking About Weather", "Describing People & Places"},
	{"At the Restaurant", "Grocery Shopping", "Cooking Vocabulary"},
	{"At the Airport", "Hotel Check-in", "Public Transportation"},
	{"At the Pharmacy", "Banking Basics", "Postal Services"},
	{"Job Interviews", "Office Communication", "Email Writing"},
	{"Making Friends", "Party Conversations", "Phone Calls"},
	{"French Cinema", "Music & Arts", "Holidays & Traditions"},
	{"Debate & Discussion", "Expressing Opinions", "Storytelling"},
	{"Industry-Specific Terms", "Idioms & Slang", "Regional Dialects"},
	{"Comprehensive Review", "Practice Scenarios", "Final Assessment"},
}

var (
	fallbackObjectives = []string{"Learn key vocabulary", "Practice pronunciation", "Build conversational skills"}
	fallbackTopics     = []string{"Vocabulary", "Grammar", "Practice"}
)

// LessonsPerWeek 学习频率对应的每周课时数，未知频率取 2
func LessonsPerWeek(freq model.StudyFrequency) int {
	if n, ok := lessonsPerWeekByFrequency[freq]; ok {
		return n
	}
	return defaultLessonsPerWeek
}

// TotalLessons 总课时，上限 50
func TotalLessons(freq model.StudyFrequency, timelineWeeks int) int {
	if timelineWeeks <= 0 {
		return 0
	}
	perWeek := LessonsPerWeek(freq)
	// 先比较周数再相乘，避免溢出
	if timelineWeeks >= (MaxCurriculumLessons+perWeek-1)/perWeek {
		return MaxCurriculumLessons
	}
	return perWeek * timelineWeeks
}

// CurriculumGenerator 根据档案生成课程计划，不做持久化
type CurriculumGenerator struct {
	provider TextProvider
}

func NewCurriculumGenerator(provider TextProvider) *CurriculumGenerator {
	return &CurriculumGenerator{provider: provider}
}

// Generate 优先使用 AI 生成，任何失败都退回模板计划
func (g *CurriculumGenerator) Generate(ctx context.Context, profile *model.Profile) *model.CurriculumPlan {
	if g.provider == nil || !g.provider.Available() {
		return FallbackPlan(profile)
	}

	plan, err := g.generateWithProvider(ctx, profile)
	if err != nil {
		monitoring.ProviderFailures.WithLabelValues(operationCurriculum).Inc()
		logger.Log.Warn("AI curriculum generation failed, using fallback",
			zap.Uint("userID", profile.UserID),
			zap.Error(err))
		return FallbackPlan(profile)
	}
	return plan
}

func (g *CurriculumGenerator) generateWithProvider(ctx context.Context, profile *model.Profile) (*model.CurriculumPlan, error) {
	text, err := g.provider.Complete(ctx, buildCurriculumPrompt(profile), curriculumMaxTokens)
	if err != nil {
		return nil, err
	}
	return ParseProviderPlan(text, profile)
}

// ParseProviderPlan 解析并校验 AI 返回的课程 JSON
func ParseProviderPlan(text string, profile *model.Profile) (*model.CurriculumPlan, error) {
	var plan model.CurriculumPlan
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &plan); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}

	normalizePlan(&plan, profile)
	if err := validatePlan(&plan); err != nil {
		return nil, err
	}
	if err := conformPlan(&plan, profile); err != nil {
		return nil, err
	}

	plan.Source = model.CurriculumSourceProvider
	return &plan, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func normalizePlan(plan *model.CurriculumPlan, profile *model.Profile) {
	sort.SliceStable(plan.Weeks, func(i, j int) bool { return plan.Weeks[i].WeekNumber < plan.Weeks[j].WeekNumber })
	for wi := range plan.Weeks {
		week := &plan.Weeks[wi]
		sort.SliceStable(week.Lessons, func(i, j int) bool { return week.Lessons[i].LessonNumber < week.Lessons[j].LessonNumber })
		for li := range week.Lessons {
			l := &week.Lessons[li]
			if l.Duration == 0 {
				l.Duration = profile.SessionDuration
			}
			if l.Description == "" {
				l.Description = lessonDescription(l.LessonNumber, l.Title)
			}
			if l.Objectives == nil {
				l.Objectives = []string{}
			}
			if l.Topics == nil {
				l.Topics = []string{}
			}
		}
	}
	// 周期与每周课时以档案为准
	plan.WeeksDuration = profile.TimelineWeeks
	plan.LessonsPerWeek = LessonsPerWeek(profile.StudyFrequency)
}

// conformPlan 总课时须与档案推算一致，周数不超过学习周期
func conformPlan(plan *model.CurriculumPlan, profile *model.Profile) error {
	if want := TotalLessons(profile.StudyFrequency, profile.TimelineWeeks); plan.TotalLessons != want {
		return fmt.Errorf("totalLessons %d, expected %d", plan.TotalLessons, want)
	}
	if len(plan.Weeks) > profile.TimelineWeeks {
		return fmt.Errorf("plan spans %d weeks, timeline is %d", len(plan.Weeks), profile.TimelineWeeks)
	}
	if last := plan.Weeks[len(plan.Weeks)-1].WeekNumber; last > profile.TimelineWeeks {
		return fmt.Errorf("week number %d beyond timeline of %d weeks", last, profile.TimelineWeeks)
	}
	return nil
}

func validatePlan(plan *model.CurriculumPlan) error {
	if plan.TotalLessons <= 0 || plan.TotalLessons > MaxCurriculumLessons {
		return fmt.Errorf("totalLessons %d out of range", plan.TotalLessons)
	}
	if len(plan.Weeks) == 0 {
		return errors.New("curriculum has no weeks")
	}
	if got := plan.LessonCount(); got != plan.TotalLessons {
		return fmt.Errorf("weeks hold %d lessons, totalLessons is %d", got, plan.TotalLessons)
	}

	next := 1
	prevWeek := 0
	for _, w := range plan.Weeks {
		if w.WeekNumber <= prevWeek {
			return fmt.Errorf("week number %d out of order", w.WeekNumber)
		}
		prevWeek = w.WeekNumber
		for _, l := range w.Lessons {
			if l.LessonNumber != next {
				return fmt.Errorf("lesson number %d, expected %d", l.LessonNumber, next)
			}
			if strings.TrimSpace(l.Title) == "" {
				return fmt.Errorf("lesson %d has no title", l.LessonNumber)
			}
			if l.Duration <= 0 {
				return fmt.Errorf("lesson %d has invalid duration %d", l.LessonNumber, l.Duration)
			}
			next++
		}
	}
	return nil
}

// FallbackPlan 模板课程：按周填满总课时，不产生空周
// 超过 12 周时主题循环使用并加 "(Part n)" 后缀
func FallbackPlan(profile *model.Profile) *model.CurriculumPlan {
	perWeek := LessonsPerWeek(profile.StudyFrequency)
	total := TotalLessons(profile.StudyFrequency, profile.TimelineWeeks)

	plan := &model.CurriculumPlan{
		TotalLessons:   total,
		WeeksDuration:  profile.TimelineWeeks,
		LessonsPerWeek: perWeek,
		Weeks:          make([]model.PlanWeek, 0, (total+perWeek-1)/perWeek),
		Summary: fmt.Sprintf("A comprehensive %d-week French learning program tailored for %s, progressing from %s to practical fluency.",
			profile.TimelineWeeks, profile.LearningGoal, profile.CurrentLevel),
		Source: model.CurriculumSourceFallback,
	}

	lessonNumber := 1
	for week := 1; lessonNumber <= total; week++ {
		themeIndex := (week - 1) % len(weekThemes)
		w := model.PlanWeek{
			WeekNumber: week,
			Theme:      fallbackTheme(week),
			Lessons:    make([]model.PlanLesson, 0, perWeek),
		}
		for i := 0; i < perWeek && lessonNumber <= total; i++ {
			title := lessonTitles[themeIndex][i%fallbackLessonsPerTheme]
			w.Lessons = append(w.Lessons, model.PlanLesson{
				LessonNumber: lessonNumber,
				Title:        title,
				Description:  lessonDescription(lessonNumber, title),
				Objectives:   append([]string(nil), fallbackObjectives...),
				Duration:     profile.SessionDuration,
				Topics:       append([]string(nil), fallbackTopics...),
			})
			lessonNumber++
		}
		plan.Weeks = append(plan.Weeks, w)
	}

	return plan
}

func fallbackTheme(week int) string {
	theme := weekThemes[(week-1)%len(weekThemes)]
	if cycle := (week-1)/len(weekThemes) + 1; cycle > 1 {
		return fmt.Sprintf("%s (Part %d)", theme, cycle)
	}
	return theme
}

func lessonDescription(number int, title string) string {
	return fmt.Sprintf("Lesson %d: %s", number, title)
}

func buildCurriculumPrompt(profile *model.Profile) string {
	homework := "No"
	if profile.IncludesHomework {
		homework = "Yes"
	}

	var b strings.Builder
	b.WriteString("You are an expert French language instructor. Create a personalized curriculum for a student with the following profile:\n\n")
	fmt.Fprintf(&b, "- Current Level: %s\n", profile.CurrentLevel)
	fmt.Fprintf(&b, "- Learning Goal: %s\n", profile.LearningGoal)
	fmt.Fprintf(&b, "- Timeline: %d weeks\n", profile.TimelineWeeks)
	fmt.Fprintf(&b, "- Study Frequency: %s (%d lessons per week)\n", profile.StudyFrequency, LessonsPerWeek(profile.StudyFrequency))
	fmt.Fprintf(&b, "- Session Duration: %d minutes\n", profile.SessionDuration)
	fmt.Fprintf(&b, "- Includes Homework: %s\n\n", homework)
	fmt.Fprintf(&b, "The curriculum must contain exactly %d lessons numbered 1 to %d across the weeks.\n\n",
		TotalLessons(profile.StudyFrequency, profile.TimelineWeeks), TotalLessons(profile.StudyFrequency, profile.TimelineWeeks))
	b.WriteString(`Generate a complete curriculum as a JSON object with this structure:
{
  "totalLessons": <number>,
  "weeksDuration": <number>,
  "lessonsPerWeek": <number>,
  "weeks": [
    {
      "weekNumber": 1,
      "theme": "Week theme",
      "lessons": [
        {
          "lessonNumber": 1,
          "title": "Lesson title",
          "objectives": ["objective 1", "objective 2"],
          "duration": 30,
          "topics": ["topic 1", "topic 2"]
        }
      ]
    }
  ],
  "summary": "Brief overview of the curriculum"
}

Make it practical, engaging, and appropriate for their level and goals. Focus on conversational French.

Return ONLY the JSON object, no additional text.`)
	return b.String()
}
