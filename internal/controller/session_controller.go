package controller

import (
	"errors"
	"lingua_tutor_backend/internal/service"
	"lingua_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.LessonSessionService
}

func NewSessionController(sessionService *service.LessonSessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// StartSession godoc
// @Summary 开始课时
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课时ID"
// @Success 201 {object} util.Response{data=model.LessonSession}
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/lessons/{id}/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "Invalid lesson ID")
		return
	}

	session, err := c.SessionService.StartSession(ctx.Request.Context(), user.UserID, lessonID)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx, "Lesson not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// CompleteSession godoc
// @Summary 完成课时
// @Description 记录学习时长并将课时标记为完成，重复提交返回已保存的结果
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.LessonSession}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/sessions/{id}/complete [post]
func (c *SessionController) CompleteSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "Invalid session ID")
		return
	}

	session, err := c.SessionService.CompleteSession(ctx.Request.Context(), user.UserID, sessionID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.NotFound(ctx, "Session not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// RecordKnowledge godoc
// @Summary 记录知识点
// @Description 新知识点返回 201，已存在的知识点累加练习次数并返回 200
// @Tags 学习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.KnowledgeInput true "知识点"
// @Success 201 {object} util.Response{data=model.KnowledgeItem}
// @Success 200 {object} util.Response{data=model.KnowledgeItem}
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/knowledge [post]
func (c *SessionController) RecordKnowledge(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.KnowledgeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, created, err := c.SessionService.RecordKnowledge(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidKnowledge):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrLessonNotFound):
			util.NotFound(ctx, "Lesson not found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if created {
		util.Created(ctx, item)
		return
	}
	util.Success(ctx, item)
}
