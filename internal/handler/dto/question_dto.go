package dto

import (
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
)

// ChoiceRequest представляет вариант ответа во входящем запросе.
// Указатели отличают отсутствующее поле от пустой строки и false: пустые значения допустимы.
type ChoiceRequest struct {
	ChoiceText *string `json:"choice_text" binding:"required"`
	IsCorrect  *bool   `json:"is_correct" binding:"required"`
}

// QuestionRequest представляет тело запросов создания и замены вопроса.
// "text" принимается как синоним "question_text"; если переданы оба, используется "question_text".
type QuestionRequest struct {
	QuestionText *string         `json:"question_text" binding:"required_without=Text"`
	Text         *string         `json:"text,omitempty" binding:"required_without=QuestionText"`
	Choices      []ChoiceRequest `json:"choices" binding:"required,dive"`
}

// ToEntity преобразует запрос в вопрос и набор вариантов
func (r *QuestionRequest) ToEntity() (entity.Question, []entity.Choice) {
	text := r.QuestionText
	if text == nil {
		text = r.Text
	}
	choices := make([]entity.Choice, len(r.Choices))
	for i, c := range r.Choices {
		choices[i] = entity.Choice{ChoiceText: *c.ChoiceText, IsCorrect: *c.IsCorrect}
	}
	return entity.Question{QuestionText: *text}, choices
}

// ChoiceResponse представляет вариант ответа в ответе клиенту
type ChoiceResponse struct {
	ID         uint   `json:"id"`
	ChoiceText string `json:"choice_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionResponse представляет вопрос с вариантами
type QuestionResponse struct {
	ID           uint             `json:"id"`
	QuestionText string           `json:"question_text"`
	Choices      []ChoiceResponse `json:"choices"`
}

// QuestionSummaryResponse представляет вопрос в списке (без вариантов)
type QuestionSummaryResponse struct {
	ID           uint   `json:"id"`
	QuestionText string `json:"question_text"`
}

// NewChoiceResponses создает DTO для набора вариантов. Никогда не возвращает nil.
func NewChoiceResponses(choices []entity.Choice) []ChoiceResponse {
	out := make([]ChoiceResponse, len(choices))
	for i, c := range choices {
		out[i] = ChoiceResponse{ID: c.ID, ChoiceText: c.ChoiceText, IsCorrect: c.IsCorrect}
	}
	return out
}

// NewQuestionResponse создает DTO для вопроса с вариантами
func NewQuestionResponse(rec *repository.Record[entity.Question, entity.Choice]) *QuestionResponse {
	if rec == nil {
		return nil
	}
	return &QuestionResponse{
		ID:           rec.Parent.ID,
		QuestionText: rec.Parent.QuestionText,
		Choices:      NewChoiceResponses(rec.Children),
	}
}

// NewQuestionSummaryResponse создает DTO для элемента списка вопросов
func NewQuestionSummaryResponse(q entity.Question) QuestionSummaryResponse {
	return QuestionSummaryResponse{ID: q.ID, QuestionText: q.QuestionText}
}
