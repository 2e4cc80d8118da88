package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"lingua_tutor_backend/internal/config"
	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/repository"
	"lingua_tutor_backend/internal/util"
	"lingua_tutor_backend/pkg/tracing"
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type DashboardService struct {
	Users     UserStore
	Curricula CurriculumStore
	Sessions  SessionStore
	Knowledge KnowledgeStore
	Cfg       config.DashboardConfig
	now       func() time.Time
}

func NewDashboardService(
	users UserStore,
	curricula CurriculumStore,
	sessions SessionStore,
	knowledge KnowledgeStore,
	cfg config.DashboardConfig,
) *DashboardService {
	if cfg.RecentSessionLimit <= 0 {
		cfg.RecentSessionLimit = 5
	}
	if cfg.KnowledgePreviewLimit <= 0 {
		cfg.KnowledgePreviewLimit = 5
	}
	return &DashboardService{
		Users:     users,
		Curricula: curricula,
		Sessions:  sessions,
		Knowledge: knowledge,
		Cfg:       cfg,
		now:       time.Now,
	}
}

type DashboardUser struct {
	Email               string `json:"email"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
}

type DashboardStats struct {
	TotalLessons       int   `json:"totalLessons"`
	CompletedLessons   int   `json:"completedLessons"`
	KnowledgeCount     int64 `json:"knowledgeCount"`
	TotalStudyMinutes  int   `json:"totalStudyMinutes"` // 仅统计最近会话窗口
	CurrentStreak      int   `json:"currentStreak"`
	ProgressPercentage int   `json:"progressPercentage"`
}

type Dashboard struct {
	User           DashboardUser         `json:"user"`
	Profile        *model.Profile        `json:"profile"`
	Stats          DashboardStats        `json:"stats"`
	Curriculum     *model.Curriculum     `json:"curriculum"`
	NextLesson     *model.Lesson         `json:"nextLesson"`
	RecentSessions []model.LessonSession `json:"recentSessions"`
	KnowledgeItems []model.KnowledgeItem `json:"knowledgeItems"`
}

// Aggregate 汇总用户学习数据，各项读取并发执行
func (s *DashboardService) Aggregate(ctx context.Context, userID uint) (dashboard *Dashboard, err error) {
	ctx, span := tracing.Start(ctx, "dashboard.aggregate", attribute.Int64("user.id", int64(userID)))
	defer func() { tracing.End(span, err) }()

	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var (
		curriculum      *model.Curriculum
		sessions        []model.LessonSession
		knowledge       []model.KnowledgeItem
		knowledgeCount  int64
		completionTimes []time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.Curricula.FindByUserID(gctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		curriculum = c
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.Sessions.FindRecent(gctx, userID, s.Cfg.RecentSessionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		knowledge, err = s.Knowledge.List(gctx, userID, repository.KnowledgeFilter{Limit: s.Cfg.KnowledgePreviewLimit})
		return err
	})
	g.Go(func() error {
		var err error
		knowledgeCount, err = s.Knowledge.Count(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		completionTimes, err = s.Sessions.CompletionTimes(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	stats := DashboardStats{
		KnowledgeCount: knowledgeCount,
		TotalStudyMinutes: lo.SumBy(sessions, func(s model.LessonSession) int {
			return s.DurationMinutes
		}),
		CurrentStreak: CurrentStreak(completionTimes, s.now()),
	}
	var next *model.Lesson
	if curriculum != nil {
		stats.TotalLessons = curriculum.TotalLessons
		stats.CompletedLessons = curriculum.CompletedLessons()
		next = curriculum.NextLesson()
	}
	stats.ProgressPercentage = ProgressPercentage(stats.CompletedLessons, stats.TotalLessons)

	if sessions == nil {
		sessions = []model.LessonSession{}
	}
	if knowledge == nil {
		knowledge = []model.KnowledgeItem{}
	}

	return &Dashboard{
		User: DashboardUser{
			Email:               user.Email,
			OnboardingCompleted: user.OnboardingCompleted,
		},
		Profile:        user.Profile,
		Stats:          stats,
		Curriculum:     curriculum,
		NextLesson:     next,
		RecentSessions: sessions,
		KnowledgeItems: knowledge,
	}, nil
}

// ProgressPercentage 四舍五入到整数并限制在 [0,100]
func ProgressPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(completed) / float64(total) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// CurrentStreak 连续学习天数：今天的记录只确认连续未中断，之前每个连续日加一
// times 需按完成时间倒序
func CurrentStreak(times []time.Time, now time.Time) int {
	loc := now.Location()
	ref := truncateDay(now, loc)
	streak := 0
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		day := truncateDay(t, loc)
		switch {
		case day.Equal(ref):
			continue
		case day.Equal(ref.AddDate(0, 0, -1)):
			streak++
			ref = day
		default:
			return streak
		}
	}
	return streak
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// KnowledgeQuery 知识库查询参数
type KnowledgeQuery struct {
	Type   string `form:"type"`
	Search string `form:"search"`
	Limit  int    `form:"limit"`
}

type KnowledgeBase struct {
	Items   []model.KnowledgeItem                         `json:"items"`
	Grouped map[model.KnowledgeType][]model.KnowledgeItem `json:"grouped"`
	Total   int                                           `json:"total"`
}

// KnowledgeBase 知识库列表，按类型分组
func (s *DashboardService) KnowledgeBase(ctx context.Context, userID uint, q KnowledgeQuery) (*KnowledgeBase, error) {
	filter, err := knowledgeFilter(q)
	if err != nil {
		return nil, err
	}

	items, err := s.Knowledge.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.KnowledgeItem{}
	}

	return &KnowledgeBase{
		Items: items,
		Grouped: lo.GroupBy(items, func(it model.KnowledgeItem) model.KnowledgeType {
			return it.KnowledgeType
		}),
		Total: len(items),
	}, nil
}

func knowledgeFilter(q KnowledgeQuery) (repository.KnowledgeFilter, error) {
	filter := repository.KnowledgeFilter{
		Type:   model.KnowledgeType(q.Type),
		Search: q.Search,
		Limit:  q.Limit,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return filter, fmt.Errorf("%w: unknown type %q", util.ErrInvalidKnowledge, q.Type)
	}
	if filter.Limit <= 0 {
		filter.Limit = util.DefaultKnowledgeLimit
	}
	if filter.Limit > util.MaxKnowledgeLimit {
		filter.Limit = util.MaxKnowledgeLimit
	}
	return filter, nil
}

var knowledgeExportHeader = []interface{}{"Type", "Content", "Translation", "Context", "Confidence", "Practice Count", "Created At"}

// ExportKnowledge 导出全部知识条目为 xlsx
func (s *DashboardService) ExportKnowledge(ctx context.Context, userID uint, w io.Writer) error {
	items, err := s.Knowledge.List(ctx, userID, repository.KnowledgeFilter{})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &knowledgeExportHeader); err != nil {
		return err
	}
	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			string(it.KnowledgeType),
			it.Content,
			it.Translation,
			it.Context,
			it.ConfidenceScore,
			it.PracticeCount,
			it.CreatedAt.Format(util.TimeFormat),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "B", "D", 30); err != nil {
		return err
	}

	return f.Write(w)
}
