package controller

import (
	"errors"
	"io"
	"lingua_tutor_backend/internal/service"
	"lingua_tutor_backend/internal/util"
	"lingua_tutor_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoiceController struct {
	VoiceService *service.VoiceService
}

func NewVoiceController(voiceService *service.VoiceService) *VoiceController {
	return &VoiceController{VoiceService: voiceService}
}

func fallbackHint() gin.H {
	return gin.H{"fallback": service.FallbackVoiceMode}
}

// TextToSpeech godoc
// @Summary 文本转语音
// @Description 返回 mp3 音频；语音服务未配置时返回 503，客户端改用浏览器语音
// @Tags 语音
// @Accept json
// @Produce audio/mpeg
// @Security ApiKeyAuth
// @Param body body service.TTSRequest true "合成参数"
// @Success 200 {file} file
// @Failure 503 {object} util.Response "语音服务不可用"
// @Router /api/voice/tts [post]
func (c *VoiceController) TextToSpeech(ctx *gin.Context) {
	var req service.TTSRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	audio, err := c.VoiceService.Synthesize(ctx.Request.Context(), req)
	if err != nil {
		c.handleError(ctx, err)
		return
	}

	ctx.Data(http.StatusOK, util.MimeAudioMpeg, audio)
}

// StreamTextToSpeech godoc
// @Summary 流式文本转语音
// @Tags 语音
// @Accept json
// @Produce audio/mpeg
// @Security ApiKeyAuth
// @Param body body service.TTSRequest true "合成参数"
// @Success 200 {file} file
// @Failure 503 {object} util.Response "语音服务不可用"
// @Router /api/voice/tts/stream [post]
func (c *VoiceController) StreamTextToSpeech(ctx *gin.Context) {
	var req service.TTSRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stream, err := c.VoiceService.OpenStream(ctx.Request.Context(), req)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	defer stream.Close()

	ctx.Header("Content-Type", util.MimeAudioMpeg)
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, stream); err != nil {
		logger.Log.Warn("Audio stream interrupted", zap.Error(err))
	}
}

// Voices godoc
// @Summary 可用音色
// @Tags 语音
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.VoiceList}
// @Router /api/voice/voices [get]
func (c *VoiceController) Voices(ctx *gin.Context) {
	voices, err := c.VoiceService.Voices(ctx.Request.Context())
	if err != nil {
		logger.Log.Warn("Failed to list voices", zap.Error(err))
		util.ErrorWithData(ctx, http.StatusInternalServerError, "Failed to fetch voices", fallbackHint())
		return
	}
	util.Success(ctx, voices)
}

// Status godoc
// @Summary 语音服务状态
// @Tags 语音
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.VoiceStatus}
// @Router /api/voice/status [get]
func (c *VoiceController) Status(ctx *gin.Context) {
	util.Success(ctx, c.VoiceService.Status())
}

func (c *VoiceController) handleError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrVoiceUnavailable) {
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "Voice service not configured", fallbackHint())
		return
	}
	logger.Log.Warn("Speech generation failed", zap.String("path", ctx.FullPath()), zap.Error(err))
	util.ErrorWithData(ctx, http.StatusInternalServerError, "Failed to generate speech", fallbackHint())
}
