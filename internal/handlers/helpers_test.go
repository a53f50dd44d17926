package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

func performJSONRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	return performJSONRequestWithCookies(router, method, path, body, nil)
}

// performJSONRequestWithCookies carries session cookies between calls so a
// test can act as one browser across requests.
func performJSONRequestWithCookies(router *gin.Engine, method, path string, body interface{}, cookies []string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.Header.Add("Cookie", cookie)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func sessionCookies(recorder *httptest.ResponseRecorder) []string {
	return recorder.Header().Values("Set-Cookie")
}
