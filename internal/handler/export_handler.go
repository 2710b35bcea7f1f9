package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	"github.com/yourusername/quiz-api/internal/service"
)

var exportHeaders = []string{"Question ID", "Question", "Choice ID", "Choice", "Correct"}

// ExportHandler выгружает вопросы с вариантами в CSV или Excel
type ExportHandler struct {
	questions *service.ResourceService[entity.Question, entity.Choice]
	log       *logrus.Entry
}

// NewExportHandler создает новый обработчик экспорта
func NewExportHandler(questions *service.ResourceService[entity.Question, entity.Choice], log *logrus.Logger) *ExportHandler {
	return &ExportHandler{questions: questions, log: log.WithField("component", "export_handler")}
}

// ExportQuestions экспортирует все вопросы, по строке на каждый вариант ответа
// GET /export/questions?format=csv|xlsx
func (h *ExportHandler) ExportQuestions(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	rows, err := h.collectRows(c)
	if err != nil {
		h.log.WithError(err).Error("failed to collect questions for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	filename := fmt.Sprintf("questions_%s", time.Now().Format("2006-01-02"))
	if format == "xlsx" {
		h.exportXLSX(c, rows, filename)
		return
	}
	h.exportCSV(c, rows, filename)
}

// collectRows строит строки выгрузки. Вопрос без вариантов даёт одну строку с пустыми колонками варианта.
func (h *ExportHandler) collectRows(c *gin.Context) ([][]string, error) {
	ctx := c.Request.Context()
	questions, err := h.questions.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(questions))
	for _, q := range questions {
		rec, err := h.questions.Get(ctx, q.ID)
		if err != nil {
			// Вопрос мог быть удалён между List и Get
			h.log.WithError(err).WithField("id", q.ID).Debug("question skipped in export")
			continue
		}
		rows = append(rows, questionRows(rec)...)
	}
	return rows, nil
}

func questionRows(rec *repository.Record[entity.Question, entity.Choice]) [][]string {
	qid := strconv.FormatUint(uint64(rec.Parent.ID), 10)
	text := sanitizeForExcel(rec.Parent.QuestionText)
	if len(rec.Children) == 0 {
		return [][]string{{qid, text, "", "", ""}}
	}
	rows := make([][]string, 0, len(rec.Children))
	for _, ch := range rec.Children {
		rows = append(rows, []string{
			qid,
			text,
			strconv.FormatUint(uint64(ch.ID), 10),
			sanitizeForExcel(ch.ChoiceText),
			strconv.FormatBool(ch.IsCorrect),
		})
	}
	return rows
}

// exportCSV пишет CSV с BOM для корректного отображения UTF-8 в Excel
func (h *ExportHandler) exportCSV(c *gin.Context, rows [][]string, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		h.log.WithError(err).Error("failed to write CSV BOM")
		return
	}

	writer := csv.NewWriter(c.Writer)
	writer.Write(exportHeaders)
	writer.WriteAll(rows)
	if err := writer.Error(); err != nil {
		h.log.WithError(err).Error("failed to write CSV export")
	}
}

// exportXLSX пишет Excel-файл через StreamWriter
func (h *ExportHandler) exportXLSX(c *gin.Context, rows [][]string, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Questions"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		h.log.WithError(err).Error("failed to rename sheet")
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		h.log.WithError(err).Error("failed to create stream writer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	if err := sw.SetRow("A1", toCells(exportHeaders)); err != nil {
		h.log.WithError(err).Error("failed to write header row")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			h.log.WithError(err).WithField("row", i+2).Error("failed to build cell name")
			continue
		}
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			h.log.WithError(err).WithField("row", i+2).Error("failed to write row")
		}
	}
	if err := sw.Flush(); err != nil {
		h.log.WithError(err).Error("failed to flush stream writer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("failed to write Excel response")
	}
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
