package mux

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_remoteAddr(t *testing.T) {
	r := &http.Request{RemoteAddr: "127.0.0.1:5000"}
	assert.Equal(t, "127.0.0.1", remoteAddr(r))

	r.RemoteAddr = "[::1]:5000"
	assert.Equal(t, "[::1]", remoteAddr(r))

	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", remoteAddr(r))
}

func Test_writeJSONError(t *testing.T) {
	a := assert.New(t)

	w := httptest.NewRecorder()
	writeJSONError(w, http.StatusBadRequest, errors.New("bad name"))
	a.Equal(http.StatusBadRequest, w.Code)
	a.Equal("application/json", w.Header().Get("Content-Type"))

	var resp errorResponse
	a.NoError(json.NewDecoder(w.Body).Decode(&resp))
	a.Equal("bad name", resp.Message)

	// server errors never leak their cause
	w = httptest.NewRecorder()
	writeJSONError(w, http.StatusInternalServerError, errors.New("secret"))
	a.NoError(json.NewDecoder(w.Body).Decode(&resp))
	a.Equal("Internal Server Error", resp.Message)
	a.Equal(500, resp.StatusCode)
}
