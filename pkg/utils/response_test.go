package utils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textPayload struct {
	Text string `json:"text"`
}

func TestDecodeRequestJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"Hi Einfra"}`))
	req.Header.Set("Content-Type", "application/json")

	got, err := DecodeRequest[textPayload](req)
	require.NoError(t, err)
	assert.Equal(t, "Hi Einfra", got.Text)
}

func TestDecodeRequestForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("text=How+can+I+request+a+demo%3F&extra=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := DecodeRequest[textPayload](req)
	require.NoError(t, err)
	assert.Equal(t, "How can I request a demo?", got.Text)
}

func TestDecodeRequestMultipartForm(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "How can I request a demo?"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	got, err := DecodeRequest[textPayload](req)
	require.NoError(t, err)
	assert.Equal(t, "How can I request a demo?", got.Text)
}

func TestDecodeRequestMultipartWithoutBoundary(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("text=x"))
	req.Header.Set("Content-Type", "multipart/form-data")

	_, err := DecodeRequest[textPayload](req)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestDecodeRequestInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	_, err := DecodeRequest[textPayload](req)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "session not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"session not found"}`, rec.Body.String())
}
