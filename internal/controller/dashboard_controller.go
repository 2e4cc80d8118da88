package controller

import (
	"bytes"
	"errors"
	"fmt"
	"lingua_tutor_backend/internal/service"
	"lingua_tutor_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary 获取仪表盘数据
// @Description 学习进度、连续学习天数、学习时长、下一课时、最近会话与知识点
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.Aggregate(ctx.Request.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx, "User not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 获取知识库
// @Description 按类型、关键字筛选已掌握的词汇、语法、短语和技能
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Param type query string false "知识类型" Enums(vocabulary, grammar, phrase, skill)
// @Param search query string false "关键字"
// @Param limit query int false "返回条数"
// @Success 200 {object} util.Response{data=service.KnowledgeBase}
// @Failure 400 {object} util.Response "参数错误"
// @Router /api/dashboard/knowledge [get]
func (c *DashboardController) GetKnowledge(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var query service.KnowledgeQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	kb, err := c.DashboardService.KnowledgeBase(ctx.Request.Context(), user.UserID, query)
	if err != nil {
		if errors.Is(err, util.ErrInvalidKnowledge) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, kb)
}

// @Summary 导出知识库
// @Description 导出全部知识点为 Excel 文件
// @Tags 仪表盘
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Success 200 {file} file
// @Router /api/dashboard/knowledge/export [get]
func (c *DashboardController) ExportKnowledge(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var buf bytes.Buffer
	if err := c.DashboardService.ExportKnowledge(ctx.Request.Context(), user.UserID, &buf); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	filename := fmt.Sprintf("knowledge_%s.xlsx", time.Now().Format("20060102"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Data(http.StatusOK, mimeXLSX, buf.Bytes())
}
