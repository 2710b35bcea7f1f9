package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	"github.com/yourusername/quiz-api/internal/handler/helper"
	"github.com/yourusername/quiz-api/internal/middleware"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	"github.com/yourusername/quiz-api/internal/service"
)

// ResourceMapper связывает схему запроса/ответа ресурса с его сущностями
type ResourceMapper[P any, C any, Req any] struct {
	// Name — имя ресурса в сообщениях ("Question")
	Name string
	// Key — ключ ресурса в теле ответа ("question" -> "question", "question_id")
	Key string
	// ChildName — имя дочерней сущности в сообщениях ("Choice")
	ChildName string

	FromRequest func(req *Req) (P, []C)
	Detail      func(rec *repository.Record[P, C]) interface{}
	Summary     func(parent P) interface{}
	Children    func(children []C) interface{}
}

// ResourceHandler обрабатывает CRUD-запросы к ресурсу
type ResourceHandler[P entity.Entity[P], C entity.ChildEntity[C], Req any] struct {
	service *service.ResourceService[P, C]
	mapper  ResourceMapper[P, C, Req]
	log     *logrus.Entry
}

// NewResourceHandler создает новый обработчик ресурса
func NewResourceHandler[P entity.Entity[P], C entity.ChildEntity[C], Req any](
	svc *service.ResourceService[P, C],
	mapper ResourceMapper[P, C, Req],
	log *logrus.Logger,
) *ResourceHandler[P, C, Req] {
	return &ResourceHandler[P, C, Req]{
		service: svc,
		mapper:  mapper,
		log:     log.WithFields(logrus.Fields{"component": "resource_handler", "resource": mapper.Key}),
	}
}

// Register подключает маршруты ресурса к группе.
// collectionPath — путь коллекции внутри группы ("/" или ""); write — middleware для изменяющих запросов.
func (h *ResourceHandler[P, C, Req]) Register(rg *gin.RouterGroup, collectionPath string, write ...gin.HandlerFunc) {
	withID := middleware.ExtractID("id")
	chain := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		out := make([]gin.HandlerFunc, 0, len(write)+len(handlers))
		out = append(out, write...)
		return append(out, handlers...)
	}

	rg.GET(collectionPath, h.List)
	rg.POST(collectionPath, chain(h.Create)...)
	rg.GET("/:id", withID, h.Get)
	rg.PUT("/:id", chain(withID, h.Update)...)
	rg.DELETE("/:id", chain(withID, h.Delete)...)
}

// List возвращает краткое представление всех записей
func (h *ResourceHandler[P, C, Req]) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = h.mapper.Summary(item)
	}
	c.JSON(http.StatusOK, out)
}

// Get возвращает запись вместе с дочерними сущностями
func (h *ResourceHandler[P, C, Req]) Get(c *gin.Context) {
	rec, err := h.service.Get(c.Request.Context(), middleware.GetID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.mapper.Detail(rec))
}

// Create обрабатывает запрос на создание записи
func (h *ResourceHandler[P, C, Req]) Create(c *gin.Context) {
	var req Req
	if !bindJSON(c, &req) {
		return
	}

	parent, children := h.mapper.FromRequest(&req)
	id, err := h.service.Create(c.Request.Context(), parent, children)
	if err != nil {
		h.handleError(c, err)
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":            fmt.Sprintf("%s created successfully", h.mapper.Name),
		h.mapper.Key + "_id": id,
		h.mapper.Key:         h.mapper.Detail(rec),
	})
}

// Update полностью заменяет запись и её дочерние сущности
func (h *ResourceHandler[P, C, Req]) Update(c *gin.Context) {
	id := middleware.GetID(c)

	var req Req
	if !bindJSON(c, &req) {
		return
	}

	parent, children := h.mapper.FromRequest(&req)
	if err := h.service.Update(c.Request.Context(), id, parent, children); err != nil {
		h.handleError(c, err)
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    fmt.Sprintf("%s updated successfully", h.mapper.Name),
		h.mapper.Key: h.mapper.Detail(rec),
	})
}

// Delete удаляет запись вместе с дочерними сущностями
func (h *ResourceHandler[P, C, Req]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.GetID(c)); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s deleted successfully", h.mapper.Name)})
}

// ListChildren возвращает дочерние сущности записи. Пустой набор считается отсутствующим.
func (h *ResourceHandler[P, C, Req]) ListChildren(c *gin.Context) {
	children, err := h.service.ListChildren(c.Request.Context(), middleware.GetID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if len(children) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%ss not found", h.mapper.ChildName)})
		return
	}
	c.JSON(http.StatusOK, h.mapper.Children(children))
}

// handleError обрабатывает ошибки сервиса и отправляет соответствующий HTTP ответ
func (h *ResourceHandler[P, C, Req]) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("%s not found", h.mapper.Name)})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).WithField("request_id", c.GetString(middleware.RequestIDKey)).Error("internal server error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON привязывает тело запроса; при ошибке отвечает 422 со списком полей
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   apperrors.ErrValidation.Error(),
			"details": helper.ValidationDetails(err),
		})
		return false
	}
	return true
}
