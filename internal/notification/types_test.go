package notification_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifyd/internal/notification"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *notification.Request)
		wantFields []string
	}{
		{name: "valid", mutate: func(*notification.Request) {}},
		{name: "empty category is allowed", mutate: func(r *notification.Request) { r.Category = "" }},
		{
			name:       "missing recipient",
			mutate:     func(r *notification.Request) { r.Recipient = "" },
			wantFields: []string{"recipient"},
		},
		{
			name:       "missing subject and template",
			mutate:     func(r *notification.Request) { r.Subject = ""; r.TemplateName = "" },
			wantFields: []string{"subject", "templateName"},
		},
		{
			name:       "unknown type",
			mutate:     func(r *notification.Request) { r.Type = "FAX" },
			wantFields: []string{"type"},
		},
		{
			name:       "unknown category",
			mutate:     func(r *notification.Request) { r.Category = "SPAM" },
			wantFields: []string{"category"},
		},
		{
			name:       "email recipient must be an address",
			mutate:     func(r *notification.Request) { r.Recipient = "not-an-address" },
			wantFields: []string{"recipient"},
		},
		{
			name:   "sms recipient is not checked as email",
			mutate: func(r *notification.Request) { r.Type = notification.TypeSMS; r.Recipient = "+15550100" },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := emailRequest()
			tc.mutate(&req)

			err := req.Validate()
			if len(tc.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs notification.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			fields := verrs.Fields()
			assert.Len(t, fields, len(tc.wantFields))
			for _, f := range tc.wantFields {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestRequest_JSONFieldNames(t *testing.T) {
	raw := `{
		"recipient": "a@b.com",
		"subject": "Welcome",
		"templateName": "welcome",
		"templateVariables": {"name": "Ada", "count": 3},
		"type": "EMAIL",
		"category": "VERIFICATION"
	}`

	var req notification.Request
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, "a@b.com", req.Recipient)
	assert.Equal(t, "welcome", req.TemplateName)
	assert.Equal(t, "Ada", req.TemplateVariables["name"])
	assert.Equal(t, notification.TypeEmail, req.Type)
	assert.Equal(t, notification.CategoryVerification, req.Category)
	assert.NoError(t, req.Validate())
}

func TestRequest_EffectiveCategory(t *testing.T) {
	assert.Equal(t, notification.CategoryGeneral, notification.Request{}.EffectiveCategory())
	assert.Equal(t, notification.CategoryBilling, notification.Request{Category: notification.CategoryBilling}.EffectiveCategory())
}

func TestNewValidator_ReportsJSONFieldNames(t *testing.T) {
	type input struct {
		FromAddress string `json:"from_address" validate:"required,email"`
		Kind        string `json:"kind" validate:"notification_type"`
	}

	err := notification.NewValidator().Struct(input{FromAddress: "nope", Kind: "FAX"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	assert.Contains(t, fields, "from_address")
	assert.Contains(t, fields, "kind")
	assert.Len(t, fields, 2)
}

func TestDecodeRequest_UsesJSONNumbers(t *testing.T) {
	req, err := notification.DecodeRequest(strings.NewReader(
		`{"recipient":"a@b.com","templateVariables":{"amount":1000000000000000000000,"name":"John"}}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("1000000000000000000000"), req.TemplateVariables["amount"])
	assert.Equal(t, "John", req.TemplateVariables["name"])

	_, err = notification.DecodeRequest(strings.NewReader(`{`))
	assert.Error(t, err)
}
