package services

import (
	"strings"

	"whatsapp-chat-viewer/internal/domain"
)

var mediaKindByExtension = map[string]domain.MediaKind{
	"jpg":  domain.MediaImage,
	"jpeg": domain.MediaImage,
	"png":  domain.MediaImage,
	"gif":  domain.MediaImage,
	"webp": domain.MediaImage,

	"mp4":  domain.MediaVideo,
	"avi":  domain.MediaVideo,
	"mov":  domain.MediaVideo,
	"webm": domain.MediaVideo,

	"opus": domain.MediaAudio,
	"mp3":  domain.MediaAudio,
	"m4a":  domain.MediaAudio,
	"ogg":  domain.MediaAudio,
	"wav":  domain.MediaAudio,
}

// fileExtension возвращает часть имени после последней точки или "", если точки нет.
func fileExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}

// ClassifyMedia определяет категорию вложения по расширению без учета регистра.
func ClassifyMedia(filename string) domain.MediaKind {
	if kind, ok := mediaKindByExtension[strings.ToLower(fileExtension(filename))]; ok {
		return kind
	}
	return domain.MediaFile
}

// ResolveMedia строит блок вложения. Существование файла не проверяется:
// об отсутствии сообщает поверхность отображения при загрузке.
func ResolveMedia(filename, basePath string) domain.MediaBlock {
	kind := ClassifyMedia(filename)
	return domain.MediaBlock{
		Kind:      kind,
		Filename:  filename,
		URL:       basePath + filename,
		Clickable: kind.Viewable(),
	}
}
