package crud

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// maxMultipartMemory mirrors echo's default for c.FormParams().
const maxMultipartMemory = 32 << 20

// DTO is the per-request parameter container passed to services.
//
// It keeps the query string apart from the request body so lookups can prefer
// the query string and fall back to the body (JSON object, urlencoded form or
// multipart form). Uploaded files are kept for services that handle uploads.
//
// A *DTO is bound through the generic handler pipeline: echo decodes JSON bodies
// through UnmarshalJSON, then Load collects query values, form values and files
// from the request.
type DTO struct {
	query url.Values
	body  map[string]any
	form  url.Values
	files map[string][]*multipart.FileHeader
}

// NewDTO builds a DTO from already-parsed values. Mostly useful for services
// calling each other and for tests.
func NewDTO(query url.Values, body map[string]any) *DTO {
	if query == nil {
		query = url.Values{}
	}
	return &DTO{query: query, body: body}
}

// Validate satisfies validation.Validatable. Parameter fallbacks are applied
// where values are read, not at bind time.
func (d *DTO) Validate() error {
	return nil
}

// UnmarshalJSON captures a JSON object request body.
func (d *DTO) UnmarshalJSON(data []byte) error {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	d.body = body
	return nil
}

// Load collects the query string, form fields and uploaded files from r.
//
// It is safe to call after echo has bound the request: form parsing in net/http
// is idempotent and the multipart form is cached on the request.
func (d *DTO) Load(r *http.Request) error {
	d.query = r.URL.Query()

	if d.body != nil {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return fmt.Errorf("failed to parse multipart form: %w", err)
		}
		d.form = r.PostForm
		if r.MultipartForm != nil {
			d.files = r.MultipartForm.File
		}

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("failed to parse form: %w", err)
		}
		d.form = r.PostForm
	}

	return nil
}

// Query returns the query string values.
func (d *DTO) Query() url.Values {
	return d.query
}

// Has reports whether key is present in the query string or the body.
func (d *DTO) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Get looks key up in the query string first and falls back to the body.
func (d *DTO) Get(key string) (string, bool) {
	if d.query.Has(key) {
		return d.query.Get(key), true
	}

	if v, ok := d.body[key]; ok {
		return stringify(v), true
	}

	if d.form.Has(key) {
		return d.form.Get(key), true
	}

	return "", false
}

// String returns the value of key or def when absent.
func (d *DTO) String(key, def string) string {
	if v, ok := d.Get(key); ok {
		return v
	}
	return def
}

// Int returns the value of key as an int, or def when absent or not numeric.
// Fractional values are truncated and values beyond the int range saturate.
func (d *DTO) Int(key string, def int) int {
	v, ok := d.Get(key)
	if !ok {
		return def
	}

	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}

	f, err := strconv.ParseFloat(v, 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) {
		return def
	}

	// Out of range values saturate instead of wrapping.
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// File returns the first file uploaded under name.
func (d *DTO) File(name string) (*multipart.FileHeader, bool) {
	fhs := d.files[name]
	if len(fhs) == 0 {
		return nil, false
	}
	return fhs[0], true
}

// Decode maps the request body onto v (a pointer to a struct with json tags).
//
// JSON bodies and form bodies go through the same weakly typed decoder, so a
// form field "id=12" fills an int64 field just like {"id": 12} does.
func (d *DTO) Decode(v any) error {
	input := d.body
	if input == nil {
		input = make(map[string]any, len(d.form))
		for key, values := range d.form {
			if len(values) > 0 {
				input[key] = values[0]
			}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return fmt.Errorf("failed to build body decoder: %w", err)
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
