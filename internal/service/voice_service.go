package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"lingua_tutor_backend/internal/config"
	"lingua_tutor_backend/internal/util"
	"lingua_tutor_backend/pkg/logger"
	"lingua_tutor_backend/pkg/monitoring"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	maxAudioBytes     = 10 << 20
	voiceStability    = 0.5
	voiceSimilarity   = 0.75
	FallbackVoiceMode = "browser-tts"
)

// TTSRequest 语音合成参数
type TTSRequest struct {
	Text     string `json:"text" binding:"required,min=1,max=5000"`
	Language string `json:"language" binding:"omitempty,oneof=en fr"`
	VoiceID  string `json:"voiceId"`
}

type Voice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Labels   map[string]string `json:"labels"`
}

type VoiceList struct {
	Available bool    `json:"available"`
	Voices    []Voice `json:"voices"`
}

type VoiceStatus struct {
	Available bool   `json:"available"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// VoiceService ElevenLabs 语音合成，合成结果缓存到对象存储
type VoiceService struct {
	config    config.VoiceConfig
	client    *http.Client
	storage   StorageProvider
	available bool
}

func NewVoiceService(cfg config.VoiceConfig, storage StorageProvider) *VoiceService {
	s := &VoiceService{
		config:    cfg,
		client:    &http.Client{Timeout: cfg.Timeout()},
		storage:   storage,
		available: cfg.Enabled && cfg.APIKey != "" && cfg.BaseURL != "",
	}
	if !s.available {
		logger.Log.Info("ElevenLabs not configured, clients fall back to browser TTS")
	}
	return s
}

func (s *VoiceService) Available() bool {
	return s.available
}

func (s *VoiceService) Status() VoiceStatus {
	if !s.available {
		return VoiceStatus{Available: false, Provider: "Browser TTS (fallback)", Model: "N/A"}
	}
	return VoiceStatus{Available: true, Provider: "11 Labs", Model: s.config.ModelID}
}

func (s *VoiceService) voiceFor(req TTSRequest) string {
	if req.VoiceID != "" {
		return req.VoiceID
	}
	if req.Language == "fr" {
		return s.config.FrenchVoiceID
	}
	return s.config.DefaultVoiceID
}

// cacheKey 相同语音、模型和文本映射到同一对象
func (s *VoiceService) cacheKey(voiceID, text string) string {
	sum := sha256.Sum256([]byte(voiceID + "|" + s.config.ModelID + "|" + text))
	return util.TTSCacheDir + "/" + hex.EncodeToString(sum[:]) + ".mp3"
}

// Synthesize 返回 mp3 音频；命中缓存时不调用 ElevenLabs
func (s *VoiceService) Synthesize(ctx context.Context, req TTSRequest) ([]byte, error) {
	if !s.available {
		return nil, util.ErrVoiceUnavailable
	}

	voiceID := s.voiceFor(req)
	key := s.cacheKey(voiceID, req.Text)
	if audio, ok := s.cached(ctx, key); ok {
		return audio, nil
	}

	resp, err := s.requestSpeech(ctx, voiceID, req.Text, false)
	if err != nil {
		monitoring.ProviderFailures.WithLabelValues("tts").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		if err := s.storage.Put(ctx, key, bytes.NewReader(audio), int64(len(audio)), util.MimeAudioMpeg); err != nil {
			logger.Log.Warn("Failed to cache synthesized audio", zap.String("key", key), zap.Error(err))
		}
	}
	logger.Log.Debug("Speech generated", zap.Int("bytes", len(audio)), zap.String("voice", voiceID))
	return audio, nil
}

func (s *VoiceService) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.storage == nil {
		return nil, false
	}
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrObjectNotFound) {
			logger.Log.Warn("Failed to read audio cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	defer rc.Close()

	audio, err := io.ReadAll(io.LimitReader(rc, maxAudioBytes))
	if err != nil || len(audio) == 0 {
		return nil, false
	}
	return audio, true
}

// OpenStream 返回 ElevenLabs 流式音频，调用方负责关闭
func (s *VoiceService) OpenStream(ctx context.Context, req TTSRequest) (io.ReadCloser, error) {
	if !s.available {
		return nil, util.ErrVoiceUnavailable
	}
	resp, err := s.requestSpeech(ctx, s.voiceFor(req), req.Text, true)
	if err != nil {
		monitoring.ProviderFailures.WithLabelValues("tts_stream").Inc()
		return nil, err
	}
	return resp.Body, nil
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (s *VoiceService) requestSpeech(ctx context.Context, voiceID, text string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(speechRequest{
		Text:    text,
		ModelID: s.config.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       voiceStability,
			SimilarityBoost: voiceSimilarity,
		},
	})
	if err != nil {
		return nil, err
	}

	endpoint := s.endpoint("text-to-speech", url.PathEscape(voiceID))
	if stream {
		endpoint += "/stream"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", util.MimeAudioMpeg)
	httpReq.Header.Set("xi-api-key", s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ElevenLabs error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// Voices 列出可用音色；未配置时返回空列表
func (s *VoiceService) Voices(ctx context.Context) (*VoiceList, error) {
	if !s.available {
		return &VoiceList{Available: false, Voices: []Voice{}}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("voices"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		monitoring.ProviderFailures.WithLabelValues("voices").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		monitoring.ProviderFailures.WithLabelValues("voices").Inc()
		return nil, fmt.Errorf("ElevenLabs error (status %d)", resp.StatusCode)
	}

	var payload struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Voices == nil {
		payload.Voices = []Voice{}
	}
	return &VoiceList{Available: true, Voices: payload.Voices}, nil
}

func (s *VoiceService) endpoint(parts ...string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/" + strings.Join(parts, "/")
}
