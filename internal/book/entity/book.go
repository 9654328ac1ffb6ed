package entity

import "time"

// Book is a record in the `books` table.
type Book struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Author        string    `db:"author" json:"author"`
	Genre         string    `db:"genre" json:"genre"`
	PublishedDate string    `db:"published_date" json:"publishedDate"`
	Description   string    `db:"description" json:"description"`
	CreatedBy     string    `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Patch lists the fields a partial update may change; nil means unchanged.
type Patch struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Genre         *string `json:"genre"`
	PublishedDate *string `json:"publishedDate"`
	Description   *string `json:"description"`
}

// NewBook creates a Book with the given identity and content fields.
func NewBook(id, title, author, genre, publishedDate, description, createdBy string) *Book {
	return &Book{
		ID:            id,
		Title:         title,
		Author:        author,
		Genre:         genre,
		PublishedDate: publishedDate,
		Description:   description,
		CreatedBy:     createdBy,
	}
}
