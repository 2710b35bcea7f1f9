package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportQuestions_CSV(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/questions/", arithmeticQuestion).Code)
	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/questions/",
		`{"question_text":"=HYPERLINK(\"x\")","choices":[]}`).Code)

	w := doRequest(r, http.MethodGet, "/export/questions?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}), "CSV should start with UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Question ID", "Question", "Choice ID", "Choice", "Correct"},
		{"1", "2+2?", "1", "4", "true"},
		{"1", "2+2?", "2", "5", "false"},
		{"2", `'=HYPERLINK("x")`, "", "", ""},
	}, records)
}

func TestExportQuestions_XLSX(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/questions/", arithmeticQuestion).Code)

	w := doRequest(r, http.MethodGet, "/export/questions?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Questions")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "2+2?", "1", "4", "true"}, rows[1])
}

func TestExportQuestions_UnknownFormat(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/export/questions?format=pdf", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSanitizeForExcel(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"plain":    "plain",
		"=1+1":     "'=1+1",
		"+7":       "'+7",
		"-cmd":     "'-cmd",
		"@SUM(A1)": "'@SUM(A1)",
		"2+2?":     "2+2?",
		"\tindent": "'\tindent",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeForExcel(in), in)
	}
}

// brokenWriter — ResponseWriter, у которого обрывается соединение при записи тела
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestExportCSV_LogsBOMWriteFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetOutput(io.Discard)
	h := &ExportHandler{log: log.WithField("component", "export_handler")}

	c, _ := gin.CreateTestContext(brokenWriter{httptest.NewRecorder()})
	c.Request = httptest.NewRequest(http.MethodGet, "/export/questions", nil)

	h.exportCSV(c, [][]string{{"1", "2+2?", "1", "4", "true"}}, "questions")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to write CSV BOM", entry.Message)
	assert.Len(t, hook.AllEntries(), 1, "rows are not written after a failed BOM")
}
