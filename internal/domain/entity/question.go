package entity

// Question представляет вопрос викторины
type Question struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	QuestionText string `gorm:"not null" json:"question_text"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

func (q Question) GetID() uint { return q.ID }

func (q Question) WithID(id uint) Question {
	q.ID = id
	return q
}

// Choice представляет вариант ответа на вопрос
type Choice struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ChoiceText string `gorm:"not null" json:"choice_text"`
	IsCorrect  bool   `gorm:"not null" json:"is_correct"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`

	// Только для внешнего ключа: варианты удаляются раньше вопроса
	Question *Question `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Choice) TableName() string {
	return "choices"
}

func (c Choice) GetID() uint { return c.ID }

func (c Choice) WithID(id uint) Choice {
	c.ID = id
	return c
}

func (c Choice) GetParentID() uint { return c.QuestionID }

func (c Choice) WithParentID(questionID uint) Choice {
	c.QuestionID = questionID
	return c
}

// ParentKey возвращает колонку, связывающую вариант с вопросом
func (Choice) ParentKey() string { return "question_id" }
