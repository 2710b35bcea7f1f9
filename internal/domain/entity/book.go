package entity

// Book представляет книгу каталога
type Book struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"not null" json:"title"`
	Author string `gorm:"not null" json:"author"`
}

// TableName определяет имя таблицы для GORM
func (Book) TableName() string {
	return "books"
}

func (b Book) GetID() uint { return b.ID }

func (b Book) WithID(id uint) Book {
	b.ID = id
	return b
}

// DefaultBooks возвращает стартовый набор книг каталога
func DefaultBooks() []Book {
	return []Book{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien"},
		{Title: "1984", Author: "George Orwell"},
	}
}
