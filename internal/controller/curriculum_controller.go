package controller

import (
	"errors"
	"lingua_tutor_backend/internal/service"
	"lingua_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// Generate godoc
// @Summary 生成课程
// @Description 根据学习档案生成课程；已存在时直接返回已有课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response{data=model.Curriculum} "创建成功"
// @Success 200 {object} util.Response{data=model.Curriculum} "课程已存在"
// @Failure 400 {object} util.Response "档案不完整"
// @Failure 404 {object} util.Response "尚未创建档案"
// @Router /api/curriculum/generate [post]
func (c *CurriculumController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	curriculum, created, err := c.CurriculumService.GenerateCurriculum(ctx.Request.Context(), claims.UserID)
	if err != nil {
		c.handleError(ctx, err)
		return
	}

	if created {
		util.Created(ctx, curriculum)
		return
	}
	util.SuccessWithMessage(ctx, "Curriculum already exists", curriculum)
}

// Get godoc
// @Summary 获取课程
// @Description 按周分组返回课程及课时
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Curriculum}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/curriculum [get]
func (c *CurriculumController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	curriculum, err := c.CurriculumService.GetCurriculum(ctx.Request.Context(), claims.UserID)
	if err != nil {
		c.handleError(ctx, err)
		return
	}

	util.Success(ctx, curriculum)
}

// Introduction godoc
// @Summary 导师开场白
// @Description 根据导师风格生成个性化开场白
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.TutorIntro}
// @Failure 404 {object} util.Response "尚未创建档案"
// @Router /api/curriculum/intro [get]
func (c *CurriculumController) Introduction(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	intro, err := c.CurriculumService.TutorIntroduction(ctx.Request.Context(), claims.UserID)
	if err != nil {
		c.handleError(ctx, err)
		return
	}

	util.Success(ctx, intro)
}

func (c *CurriculumController) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrProfileNotFound):
		util.NotFound(ctx, "Profile not found, complete onboarding first")
	case errors.Is(err, util.ErrCurriculumNotFound):
		util.NotFound(ctx, "Curriculum not found")
	case errors.Is(err, util.ErrInvalidProfile):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
