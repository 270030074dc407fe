package blobstore

import (
	"context"
	"io"
)

// Object describe un archivo ya guardado.
type Object struct {
	Key string // ubicación interna (nombre en disco o key del bucket)
	URL string // URL pública para descargarlo
}

// Store guarda los bytes de los documentos. El dominio nunca lee los bytes de vuelta.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
}
