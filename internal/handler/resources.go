package handler

import (
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	"github.com/yourusername/quiz-api/internal/handler/dto"
)

// QuestionHandler обрабатывает запросы к вопросам
type QuestionHandler = ResourceHandler[entity.Question, entity.Choice, dto.QuestionRequest]

// BookHandler обрабатывает запросы к книгам
type BookHandler = ResourceHandler[entity.Book, entity.NoChild, dto.BookRequest]

// QuestionMapper описывает представление вопросов: список без вариантов, карточка с вариантами
func QuestionMapper() ResourceMapper[entity.Question, entity.Choice, dto.QuestionRequest] {
	return ResourceMapper[entity.Question, entity.Choice, dto.QuestionRequest]{
		Name:        "Question",
		Key:         "question",
		ChildName:   "Choice",
		FromRequest: (*dto.QuestionRequest).ToEntity,
		Detail: func(rec *repository.Record[entity.Question, entity.Choice]) interface{} {
			return dto.NewQuestionResponse(rec)
		},
		Summary: func(q entity.Question) interface{} {
			return dto.NewQuestionSummaryResponse(q)
		},
		Children: func(choices []entity.Choice) interface{} {
			return dto.NewChoiceResponses(choices)
		},
	}
}

// BookMapper описывает представление книг
func BookMapper() ResourceMapper[entity.Book, entity.NoChild, dto.BookRequest] {
	return ResourceMapper[entity.Book, entity.NoChild, dto.BookRequest]{
		Name:        "Book",
		Key:         "book",
		FromRequest: (*dto.BookRequest).ToEntity,
		Detail: func(rec *repository.Record[entity.Book, entity.NoChild]) interface{} {
			return dto.NewBookResponse(rec.Parent)
		},
		Summary: func(b entity.Book) interface{} {
			return dto.NewBookResponse(b)
		},
		Children: func([]entity.NoChild) interface{} {
			return []interface{}{}
		},
	}
}
