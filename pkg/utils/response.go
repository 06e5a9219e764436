package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/rs/zerolog/log"
)

var ErrBadRequest = errors.New("invalid request body")

const maxFormMemory = 1 << 20

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.SetAliasTag("json")
	return d
}()

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// DecodeRequest 按 Content-Type 解析请求体：表单走 gorilla/schema，其余按 JSON。
func DecodeRequest[T any](r *http.Request) (T, error) {
	var data T

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return data, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		if err := formDecoder.Decode(&data, r.PostForm); err != nil {
			return data, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return data, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		if err := formDecoder.Decode(&data, r.MultipartForm.Value); err != nil {
			return data, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return data, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	return data, nil
}
