package util

const (
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 语音缓存
const (
	MimeAudioMpeg = "audio/mpeg"
	TTSCacheDir   = "tts"
)

// 知识库查询上限
const (
	DefaultKnowledgeLimit = 50
	MaxKnowledgeLimit     = 200
)
