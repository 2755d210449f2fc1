package interfaces

import "context"

// ImageStore сохраняет сгенерированные иллюстрации и возвращает публичный URL.
//
//go:generate mockery --name ImageStore --output ../mocks --outpkg mocks --case=underscore
type ImageStore interface {
	SavePNG(ctx context.Context, objectName string, data []byte) (string, error)
}
