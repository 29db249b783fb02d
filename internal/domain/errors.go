package domain

import "errors"

var (
	// ErrFetchFailed indica que no se pudo obtener ni una página de actividad.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrInvalidInput indica un batch vacío, demasiado grande o con direcciones vacías.
	ErrInvalidInput = errors.New("invalid input")
)
