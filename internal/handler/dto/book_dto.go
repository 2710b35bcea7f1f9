package dto

import (
	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// BookRequest представляет тело запросов создания и замены книги.
// Поля обязательны, но пустая строка допустима.
type BookRequest struct {
	Title  *string `json:"title" binding:"required"`
	Author *string `json:"author" binding:"required"`
}

// ToEntity преобразует запрос в книгу. У книг нет дочерних записей.
func (r *BookRequest) ToEntity() (entity.Book, []entity.NoChild) {
	return entity.Book{Title: *r.Title, Author: *r.Author}, nil
}

// BookResponse представляет книгу в ответе клиенту
type BookResponse struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// NewBookResponse создает DTO для книги
func NewBookResponse(b entity.Book) BookResponse {
	return BookResponse{ID: b.ID, Title: b.Title, Author: b.Author}
}
