package validator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type priceRequest struct {
	Name  string      `json:"name" binding:"required"`
	Price json.Number `json:"price" binding:"required,decimal"`
	Label string      `json:"label" binding:"omitempty,decimal"`
}

func bindBody(t *testing.T, body string) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req priceRequest
	return Bind(c, &req)
}

func TestBind(t *testing.T) {
	Setup()

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{name: "number", body: `{"name":"a","price":12.5}`},
		{name: "numeric string", body: `{"name":"a","price":"12.50"}`},
		{name: "missing name", body: `{"price":1}`, fields: []string{"name"}},
		{name: "missing price", body: `{"name":"a"}`, fields: []string{"price"}},
		{name: "label not a number", body: `{"name":"a","price":1,"label":"abc"}`, fields: []string{"label"}},
		{name: "malformed json", body: `{"name":`, fields: []string{"detail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := bindBody(t, tt.body)
			if len(tt.fields) == 0 {
				assert.Nil(t, fields)
				return
			}
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestDecimalMessage(t *testing.T) {
	Setup()

	fields := bindBody(t, `{"name":"a","price":1,"label":"abc"}`)
	assert.Equal(t, "label must be a number", fields["label"])
}
