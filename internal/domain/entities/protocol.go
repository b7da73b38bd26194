package entities

import (
	"time"
)

// Protocol is a scientific material (PDF plus cover art) a rep can send
// to doctors. Each rep keeps their own library.
type Protocol struct {
	ID          string    `json:"id" db:"id"`
	OwnerUID    string    `json:"owner_uid" db:"owner_uid"`
	Title       string    `json:"title" db:"title"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	PDFURL      string    `json:"pdf_url" db:"pdf_url"`
	CoverURL    string    `json:"cover_url" db:"cover_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
