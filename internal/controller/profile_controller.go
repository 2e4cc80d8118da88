package controller

import (
	"errors"
	"lingua_tutor_backend/internal/service"
	"lingua_tutor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	ProfileService *service.ProfileService
}

func NewProfileController(profileService *service.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: profileService}
}

// SaveProfile godoc
// @Summary 保存学习档案
// @Description 首次提交创建档案并完成引导，再次提交更新档案
// @Tags 档案
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileInput true "学习档案"
// @Success 201 {object} util.Response{data=model.Profile} "创建成功"
// @Success 200 {object} util.Response{data=model.Profile} "更新成功"
// @Failure 400 {object} util.Response "档案字段不合法"
// @Router /api/profile [post]
func (c *ProfileController) SaveProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, created, err := c.ProfileService.Upsert(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidProfile) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	if created {
		util.Created(ctx, profile)
		return
	}
	util.Success(ctx, profile)
}

// GetProfile godoc
// @Summary 获取学习档案
// @Tags 档案
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Profile}
// @Failure 404 {object} util.Response "尚未创建档案"
// @Router /api/profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.ProfileService.Get(ctx.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrProfileNotFound) {
			util.NotFound(ctx, "Profile not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}
