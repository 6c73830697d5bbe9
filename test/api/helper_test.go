package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// APIResponse represents the API response structure
type APIResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TestResponse wraps the API response for testing
type TestResponse struct {
	StatusCode int
	Status     string
	Message    string
	Data       map[string]interface{}
	RawData    string
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}

func makeRequest(method, path string, body interface{}) TestResponse {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return TestResponse{Status: "error", Message: err.Error()}
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv("API_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	response, err := client.Do(req)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return TestResponse{
			StatusCode: response.StatusCode,
			Status:     "error",
			Message:    fmt.Sprintf("failed to parse response: %v\nraw: %s", err, string(respBody)),
		}
	}

	testResp := TestResponse{
		StatusCode: response.StatusCode,
		Status:     apiResp.Status,
		Message:    apiResp.Message,
		RawData:    string(apiResp.Data),
	}

	if len(apiResp.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(apiResp.Data, &data); err == nil {
			testResp.Data = data
		}
	}

	return testResp
}
