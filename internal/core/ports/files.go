package ports

import (
	"context"
	"io"
)

// FileStorage определяет интерфейс для работы с файловым хранилищем (S3/MinIO или локальный диск)
type FileStorage interface {
	// UploadFile загружает файл под ключом key и возвращает его публичный URL
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	// DeleteFile удаляет файл по ключу; отсутствие файла ошибкой не считается
	DeleteFile(ctx context.Context, key string) error
	// FileURL строит публичный URL для ключа
	FileURL(key string) string
}
