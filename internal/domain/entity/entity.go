package entity

// Entity описывает родительскую сущность, адресуемую по ID.
// Методы With* возвращают копию, поэтому хранилища могут работать со значениями.
type Entity[T any] interface {
	GetID() uint
	WithID(id uint) T
}

// ChildEntity описывает дочернюю сущность, существующую только в связке с родителем.
type ChildEntity[T any] interface {
	Entity[T]
	GetParentID() uint
	WithParentID(parentID uint) T
	// ParentKey возвращает имя колонки внешнего ключа.
	// Пустая строка означает, что у родителя нет дочерних записей.
	ParentKey() string
}

// NoChild используется как тип дочерней сущности для ресурсов без детей (книги)
type NoChild struct{}

func (NoChild) GetID() uint { return 0 }
func (n NoChild) WithID(uint) NoChild { return n }
func (NoChild) GetParentID() uint { return 0 }
func (n NoChild) WithParentID(uint) NoChild { return n }
func (NoChild) ParentKey() string { return "" }
