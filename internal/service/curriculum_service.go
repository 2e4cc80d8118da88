package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/util"
	"lingua_tutor_backend/pkg/logger"
	"lingua_tutor_backend/pkg/monitoring"
	"lingua_tutor_backend/pkg/tracing"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const introMaxTokens = 500

type CurriculumService struct {
	Users     UserStore
	Profiles  ProfileStore
	Curricula CurriculumStore
	Generator *CurriculumGenerator
	Provider  TextProvider
	Intro     IntroStore
}

func NewCurriculumService(
	users UserStore,
	profiles ProfileStore,
	curricula CurriculumStore,
	provider TextProvider,
	intro IntroStore,
) *CurriculumService {
	return &CurriculumService{
		Users:     users,
		Profiles:  profiles,
		Curricula: curricula,
		Generator: NewCurriculumGenerator(provider),
		Provider:  provider,
		Intro:     intro,
	}
}

// GenerateCurriculum 幂等生成：已存在则直接返回，created 为 false
func (s *CurriculumService) GenerateCurriculum(ctx context.Context, userID uint) (curriculum *model.Curriculum, created bool, err error) {
	ctx, span := tracing.Start(ctx, "curriculum.generate", attribute.Int64("user.id", int64(userID)))
	defer func() { tracing.End(span, err) }()

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.Curricula.FindByUserID(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	plan := s.Generator.Generate(ctx, profile)
	span.SetAttributes(attribute.String("curriculum.source", plan.Source))
	if plan.TotalLessons <= 0 || len(plan.Weeks) == 0 {
		return nil, false, fmt.Errorf("%w: profile yields an empty curriculum", util.ErrInvalidProfile)
	}

	curriculum, err = s.Curricula.CreateWithLessons(ctx, userID, plan)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发请求已写入，读取胜出者的结果
		logger.Log.Info("Concurrent curriculum generation detected, returning stored curriculum", zap.Uint("userID", userID))
		winner, findErr := s.Curricula.FindByUserID(ctx, userID)
		if findErr != nil {
			return nil, false, findErr
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	monitoring.CurriculumGenerations.WithLabelValues(plan.Source).Inc()
	logger.Log.Info("Curriculum generated",
		zap.Uint("userID", userID),
		zap.String("source", plan.Source),
		zap.Int("totalLessons", plan.TotalLessons))
	return curriculum, true, nil
}

func (s *CurriculumService) GetCurriculum(ctx context.Context, userID uint) (*model.Curriculum, error) {
	curriculum, err := s.Curricula.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCurriculumNotFound
	}
	return curriculum, err
}

func (s *CurriculumService) loadProfile(ctx context.Context, userID uint) (*model.Profile, error) {
	profile, err := s.Profiles.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidProfile, err)
	}
	return profile, nil
}

// TutorName 导师固定名字
const TutorName = "Amélie"

// TutorIntro 导师开场白及其风格
type TutorIntro struct {
	TutorName    string                 `json:"tutorName"`
	Personality  model.TutorPersonality `json:"personality"`
	Introduction string                 `json:"introduction"`
}

// TutorIntroduction 导师开场白，AI 生成的文本按用户缓存 24 小时
func (s *CurriculumService) TutorIntroduction(ctx context.Context, userID uint) (*TutorIntro, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := &TutorIntro{TutorName: TutorName, Personality: profile.TutorPersonality}

	if intro, ok := s.Intro.Get(ctx, userID); ok {
		result.Introduction = intro
		return result, nil
	}

	name := ""
	if user, err := s.Users.FindByID(ctx, userID); err == nil {
		name = user.DisplayName()
	}

	if s.Provider != nil && s.Provider.Available() {
		text, err := s.Provider.Complete(ctx, buildIntroductionPrompt(profile, name), introMaxTokens)
		if err != nil {
			monitoring.ProviderFailures.WithLabelValues("tutor_intro").Inc()
			logger.Log.Warn("AI tutor introduction failed, using fallback", zap.Uint("userID", userID), zap.Error(err))
		} else if text = strings.TrimSpace(text); text != "" {
			// 只缓存 AI 文本，模板文本下次仍可重试 AI
			s.Intro.Set(ctx, userID, text)
			result.Introduction = text
			return result, nil
		}
	}

	result.Introduction = FallbackIntroduction(profile.TutorPersonality, name)
	return result, nil
}

var goalDescriptions = map[model.LearningGoal]string{
	model.GoalBusinessTrip: "preparing for business travel",
	model.GoalTourism:      "learning French for tourism and travel",
	model.GoalConversation: "achieving conversational fluency",
	model.GoalAcademic:     "studying French for academic purposes",
	model.GoalFluency:      "reaching general fluency",
}

func buildIntroductionPrompt(profile *model.Profile, name string) string {
	goal, ok := goalDescriptions[profile.LearningGoal]
	if !ok {
		goal = "learning French"
	}
	target := string(profile.CurrentLevel)
	if profile.CurrentLevel == model.LevelBeginner {
		target = string(model.LevelA1)
	}
	student := "a student"
	if name != "" {
		student = "a student named " + name
	}

	return fmt.Sprintf(`You are Amélie, a %s French tutor. Write a warm, brief introduction (2-3 sentences) for %s who is %s and wants to reach %s level in %d weeks.

Make it enthusiastic and personalized. This will be spoken aloud, so keep it conversational.

Return only the introduction text in English, nothing else.`,
		profile.TutorPersonality, student, goal, target, profile.TimelineWeeks)
}

// FallbackIntroduction 按导师性格返回固定开场白
func FallbackIntroduction(personality model.TutorPersonality, name string) string {
	suffix := ""
	if name != "" {
		suffix = ", " + name
	}

	switch personality {
	case model.PersonalityFun:
		return fmt.Sprintf("Salut%s! I'm Amélie, your French tutor, and we're going to have an amazing time learning together! Get ready for some fun and engaging lessons!", suffix)
	case model.PersonalityDetailOriented:
		return fmt.Sprintf("Bonjour%s. I'm Amélie, your French instructor. I've carefully reviewed your goals and I'm prepared to guide you through a structured, comprehensive learning program.", suffix)
	case model.PersonalityFormal:
		return fmt.Sprintf("Good day%s. I am Amélie, and I shall be your French language instructor. I have prepared a rigorous curriculum aligned with your objectives.", suffix)
	case model.PersonalitySarcastic:
		return fmt.Sprintf("Well, well%s! I'm Amélie, your French tutor. I hope you're ready to actually learn French, not just download an app and ignore it like everyone else!", suffix)
	default:
		return fmt.Sprintf("Bonjour%s! I'm Amélie, and I'm so excited to be your French tutor! I can see you're passionate about learning French, and I'm here to support you every step of the way.", suffix)
	}
}
