package upload

import "time"

const (
	MaxFileSize = 5 * 1024 * 1024 * 1024 // 5 GiB
	PartSize    = 10 * 1024 * 1024       // 10 MiB

	// PartUrlTTL bounds how long a presigned part write target stays valid.
	PartUrlTTL = 15 * time.Minute

	MinParticipants     = 1
	MaxParticipants     = 10
	DefaultParticipants = 2
)

var AllowedMimeTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
	"video/x-msvideo": true,
	"audio/wav":       true,
	"audio/x-wav":     true,
	"audio/mpeg":      true,
	"audio/mp4":       true,
}

func IsMimeTypeAllowed(mimeType string) bool {
	return AllowedMimeTypes[mimeType]
}
