package models

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation error")

	// Categorization engine failures. All of them are recovered inside the
	// categorizer and turn into the fallback category.
	ErrModelLoad      = errors.New("embedding model load failed")
	ErrModelNotReady  = errors.New("embedding model not ready")
	ErrReferenceBuild = errors.New("category reference build failed")
	ErrEmbedding      = errors.New("embedding generation failed")
)
