// Package models defines gallery images.
package models

import (
	"time"

	id "farmshop/pkg/domain"
)

type Image struct {
	ID          id.ImageID `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	Position    int        `json:"position" db:"position"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Upload is a new image with its metadata.
type Upload struct {
	Title       string
	Description string
	Filename    string
	ContentType string
	Size        int64
}

// Update replaces the editable fields. A nil Position keeps the current one.
type Update struct {
	Title       string
	Description string
	Position    *int
}
