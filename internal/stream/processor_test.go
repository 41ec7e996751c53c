package stream_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifyd/internal/metrics"
	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/service"
	"github.com/shaharia-lab/notifyd/internal/stream"
)

type stubSender struct {
	mu     sync.Mutex
	err    error
	source string
	reqs   []notification.Request
}

func (s *stubSender) Send(_ context.Context, source string, req notification.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.reqs = append(s.reqs, req)
	return "req-1", s.err
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

// Payload shape produced by upstream services.
const payload = `{"recipient":"a@b.com","subject":"S","templateName":"verification","templateVariables":{"name":"John Doe","verificationCode":123456},"type":"EMAIL","category":"VERIFICATION"}`

func TestProcessor_Results(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		sendErr   error
		want      string
		wantSends int
	}{
		{name: "dispatched", payload: payload, want: metrics.ResultDispatched, wantSends: 1},
		{name: "malformed", payload: `{not json`, want: metrics.ResultMalformed, wantSends: 0},
		{
			name:      "invalid",
			payload:   payload,
			sendErr:   &service.ValidationError{Field: "recipient", Message: "is required"},
			want:      metrics.ResultInvalid,
			wantSends: 1,
		},
		{
			name:      "dispatch failure",
			payload:   payload,
			sendErr:   &notification.DeliveryError{Recipient: "a@b.com", Subject: "S", Err: errors.New("refused")},
			want:      metrics.ResultFailed,
			wantSends: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &stubSender{err: tt.sendErr}
			p := stream.NewProcessor(sender, "kafka", nil)

			before := testutil.ToFloat64(metrics.StreamMessages.WithLabelValues("kafka", tt.want))
			got := p.Process(context.Background(), []byte(tt.payload))

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSends, sender.count())
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.StreamMessages.WithLabelValues("kafka", tt.want)))
		})
	}
}

func TestProcessor_PassesSourceAndRequest(t *testing.T) {
	sender := &stubSender{}
	stream.NewProcessor(sender, "nats", nil).Process(context.Background(), []byte(payload))

	require.Len(t, sender.reqs, 1)
	assert.Equal(t, "nats", sender.source)
	req := sender.reqs[0]
	assert.Equal(t, "a@b.com", req.Recipient)
	assert.Equal(t, notification.TypeEmail, req.Type)
	assert.Equal(t, notification.CategoryVerification, req.Category)
	assert.Equal(t, "John Doe", req.TemplateVariables["name"])
}

func TestEncodeDecode(t *testing.T) {
	req := notification.Request{
		Recipient:    "a@b.com",
		Subject:      "S",
		TemplateName: "t",
		Type:         notification.TypeEmail,
	}
	data, err := stream.Encode(req)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"templateName":"t"`)

	got, err := stream.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}
