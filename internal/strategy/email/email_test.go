package email_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/render"
	"github.com/shaharia-lab/notifyd/internal/storage"
	"github.com/shaharia-lab/notifyd/internal/storage/mocks"
	"github.com/shaharia-lab/notifyd/internal/strategy/email"
	"github.com/shaharia-lab/notifyd/internal/transport"
)

// --- stubs ---

type stubResolver struct {
	cfg   storage.TransportConfig
	err   error
	calls int
}

func (r *stubResolver) ResolveActiveTransport(_ context.Context) (storage.TransportConfig, error) {
	r.calls++
	return r.cfg, r.err
}

type stubRenderer struct {
	out    string
	err    error
	gotID  string
	gotVar map[string]any
}

func (r *stubRenderer) Render(templateID string, vars map[string]any) (string, error) {
	r.gotID = templateID
	r.gotVar = vars
	return r.out, r.err
}

type recordingClient struct {
	mu   sync.Mutex
	err  error
	sent []transport.Message
}

func (c *recordingClient) Send(_ context.Context, msg transport.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return c.err
}

type stubFactory struct {
	client *recordingClient
	built  []storage.TransportConfig
}

func (f *stubFactory) Build(cfg storage.TransportConfig) transport.Client {
	f.built = append(f.built, cfg)
	return f.client
}

func activeConfig() storage.TransportConfig {
	return storage.TransportConfig{
		ID:          1,
		Host:        "sandbox.smtp.mailtrap.io",
		Port:        2525,
		FromAddress: "no-reply@clinicwave.com",
		IsActive:    true,
	}
}

func request() notification.Request {
	return notification.Request{
		Recipient:         "a@b.com",
		Subject:           "S",
		TemplateName:      "t",
		TemplateVariables: map[string]any{},
		Type:              notification.TypeEmail,
	}
}

// --- tests ---

func TestStrategy_Type(t *testing.T) {
	s := email.New(&stubResolver{}, &stubFactory{}, &stubRenderer{}, nil)
	assert.Equal(t, notification.TypeEmail, s.Type())
}

func TestStrategy_SendsRenderedMessage(t *testing.T) {
	resolver := &stubResolver{cfg: activeConfig()}
	client := &recordingClient{}
	factory := &stubFactory{client: client}
	renderer := &stubRenderer{out: "<html/>"}

	err := email.New(resolver, factory, renderer, nil).Send(context.Background(), request())
	require.NoError(t, err)

	require.Len(t, client.sent, 1)
	assert.Equal(t, transport.Message{To: "a@b.com", Subject: "S", HTMLBody: "<html/>"}, client.sent[0])
	assert.Equal(t, "email/t", renderer.gotID)
	assert.Equal(t, map[string]any{}, renderer.gotVar)
	require.Len(t, factory.built, 1)
	assert.Equal(t, activeConfig(), factory.built[0])
}

func TestStrategy_RenderFailure(t *testing.T) {
	client := &recordingClient{}
	s := email.New(
		&stubResolver{cfg: activeConfig()},
		&stubFactory{client: client},
		&stubRenderer{err: errors.New("unexpected token at line 3")},
		nil,
	)

	req := request()
	req.TemplateName = "X"
	err := s.Send(context.Background(), req)

	var tpe *notification.TemplateProcessingError
	require.ErrorAs(t, err, &tpe)
	assert.Equal(t, "X", tpe.TemplateName)
	assert.Contains(t, err.Error(), "X")
	assert.Contains(t, err.Error(), "unexpected token at line 3")
	assert.Empty(t, client.sent)
}

func TestStrategy_DeliveryFailure(t *testing.T) {
	client := &recordingClient{err: errors.New("535 authentication failed")}
	s := email.New(
		&stubResolver{cfg: activeConfig()},
		&stubFactory{client: client},
		&stubRenderer{out: "<html/>"},
		nil,
	)

	err := s.Send(context.Background(), request())

	var de *notification.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, err.Error(), "a@b.com")
	assert.Contains(t, err.Error(), "S")
	assert.Contains(t, err.Error(), "535 authentication failed")
	assert.True(t, notification.Retryable(err))
	assert.Len(t, client.sent, 1)
}

func TestStrategy_TransportUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "typed error passes through", err: &notification.TransportUnavailableError{Err: storage.ErrNoActiveTransport}},
		{name: "plain error is classified", err: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &recordingClient{}
			renderer := &stubRenderer{out: "<html/>"}
			s := email.New(&stubResolver{err: tt.err}, &stubFactory{client: client}, renderer, nil)

			err := s.Send(context.Background(), request())

			var tue *notification.TransportUnavailableError
			require.ErrorAs(t, err, &tue)
			assert.Empty(t, client.sent)
			assert.Empty(t, renderer.gotID)
		})
	}
}

func TestStrategy_ResolvesOnEverySend(t *testing.T) {
	resolver := &stubResolver{cfg: activeConfig()}
	factory := &stubFactory{client: &recordingClient{}}
	s := email.New(resolver, factory, &stubRenderer{out: "x"}, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Send(context.Background(), request()))
	}
	assert.Equal(t, 3, resolver.calls)
	assert.Len(t, factory.built, 3)
}

func TestStrategy_WithRealResolverAndRenderer(t *testing.T) {
	store := new(mocks.MockTransportStore)
	cfg := activeConfig()
	store.On("ActiveTransport", mock.Anything).Return(&cfg, nil)

	renderer := render.NewHTMLRenderer(fstest.MapFS{
		"email/welcome.html": {Data: []byte(`<p>Welcome {{.name}}</p>`)},
	})
	client := &recordingClient{}
	s := email.New(transport.NewResolver(store), &stubFactory{client: client}, renderer, nil)

	req := request()
	req.TemplateName = "welcome"
	req.TemplateVariables = map[string]any{"name": "John Doe"}
	require.NoError(t, s.Send(context.Background(), req))

	require.Len(t, client.sent, 1)
	assert.Equal(t, "<p>Welcome John Doe</p>", client.sent[0].HTMLBody)

	// Missing variable is a template error and nothing is sent.
	req.TemplateVariables = nil
	err := s.Send(context.Background(), req)
	var tpe *notification.TemplateProcessingError
	require.ErrorAs(t, err, &tpe)
	assert.Len(t, client.sent, 1)
}

func TestStrategy_DispatchedThroughRegistry(t *testing.T) {
	client := &recordingClient{}
	s := email.New(&stubResolver{cfg: activeConfig()}, &stubFactory{client: client}, &stubRenderer{out: "<html/>"}, nil)
	d := notification.NewDispatcher(notification.NewRegistry(s), nil)

	require.NoError(t, d.Dispatch(context.Background(), request()))
	assert.Len(t, client.sent, 1)

	req := request()
	req.Type = notification.TypeSMS
	var ute *notification.UnsupportedTypeError
	require.ErrorAs(t, d.Dispatch(context.Background(), req), &ute)
	assert.Len(t, client.sent, 1)
}
