package booktracker

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Activated     bool       `bun:"activated" json:"activated"`
	LoggedIn      bool       `bun:"logged_in" json:"logged_in"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Book is a single catalog entry inside a user's library.
type Book struct {
	GoogleBooksID string     `json:"google_books_id"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors,omitempty"`
	Date          string     `json:"date,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	AddedAt       *time.Time `json:"added_at,omitempty"`
}

// Library is the per-user book collection. Books is stored as a JSON
// document, newest entries first.
type Library struct {
	bun.BaseModel `bun:"table:libraries,alias:lib"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Books         []Book     `bun:"books,type:jsonb" json:"books"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Contains reports whether the library already holds the given volume.
func (l *Library) Contains(googleBooksID string) bool {
	for _, b := range l.Books {
		if b.GoogleBooksID == googleBooksID {
			return true
		}
	}
	return false
}

// AddBook prepends the book so the most recent addition renders first.
func (l *Library) AddBook(book Book) *Library {
	if book.AddedAt == nil {
		n := time.Now()
		book.AddedAt = &n
	}
	l.Books = append([]Book{book}, l.Books...)
	return l
}
