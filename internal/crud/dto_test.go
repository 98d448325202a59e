package crud

import (
	"bytes"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func TestDTO_JSONBody(t *testing.T) {
	dto := &DTO{}
	require.NoError(t, dto.UnmarshalJSON([]byte(`{"id": 4, "name": "Ada", "rows": 15}`)))

	req := httptest.NewRequest(http.MethodPost, "/save?page=2", nil)
	require.NoError(t, dto.Load(req))

	assert.Equal(t, 15, dto.Int("rows", 0))
	assert.Equal(t, 2, dto.Int("page", 0))
	assert.Equal(t, "Ada", dto.String("name", ""))
	assert.False(t, dto.Has("missing"))

	var in input
	require.NoError(t, dto.Decode(&in))
	assert.Equal(t, input{ID: 4, Name: "Ada"}, in)
}

func TestDTO_IntSaturates(t *testing.T) {
	dto := NewDTO(url.Values{"big": {"99999999999999999999"}, "small": {"-1e40"}, "nan": {"NaN"}}, map[string]any{"huge": 1e300})

	assert.Equal(t, math.MaxInt, dto.Int("big", 0))
	assert.Equal(t, math.MinInt, dto.Int("small", 0))
	assert.Equal(t, math.MaxInt, dto.Int("huge", 0))
	assert.Equal(t, 7, dto.Int("nan", 7))
}

func TestDTO_RejectsNonObjectBody(t *testing.T) {
	dto := &DTO{}
	assert.Error(t, dto.UnmarshalJSON([]byte(`[1,2]`)))
}

func TestDTO_URLEncodedForm(t *testing.T) {
	form := url.Values{"id": {"12"}, "name": {"Grace"}, "rows": {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/save", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	dto := &DTO{}
	require.NoError(t, dto.Load(req))

	assert.Equal(t, 3, dto.Int("rows", 0))

	var in input
	require.NoError(t, dto.Decode(&in))
	assert.Equal(t, input{ID: 12, Name: "Grace"}, in)
}

func TestDTO_MultipartFiles(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Linus"))
	fw, err := w.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/save", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	dto := &DTO{}
	require.NoError(t, dto.Load(req))

	assert.Equal(t, "Linus", dto.String("name", ""))

	fh, ok := dto.File("avatar")
	require.True(t, ok)
	assert.Equal(t, "me.png", fh.Filename)

	_, ok = dto.File("other")
	assert.False(t, ok)
}

func TestDTO_DecodeTypeMismatch(t *testing.T) {
	dto := NewDTO(nil, map[string]any{"id": "not-a-number"})

	var in input
	assert.Error(t, dto.Decode(&in))
}
