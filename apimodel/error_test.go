package apimodel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorMessage(t *testing.T) {
	assert.Equal(t, "Ok", NewErrorMessage(http.StatusOK, "").ErrMessage)
	assert.Equal(t, "Internal error", NewErrorMessage(http.StatusTeapot, "").ErrMessage)
	assert.Equal(t, "boom", NewErrorMessage(http.StatusTeapot, "boom").ErrMessage)
	assert.Equal(t, "422:invalid color or brightness", InvalidSettingErrorMessage.Error())
}

func TestSendError(t *testing.T) {
	rec := httptest.NewRecorder()
	EmptyTextErrorMessage.SendError(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var msg ErrorMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, EmptyTextErrorMessage, msg)
}
