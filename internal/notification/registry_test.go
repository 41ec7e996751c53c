package notification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifyd/internal/notification"
)

// --- stub strategy ---

type stubStrategy struct {
	name  string
	typ   notification.Type
	err   error
	calls []notification.Request
}

func (s *stubStrategy) Type() notification.Type { return s.typ }

func (s *stubStrategy) Send(_ context.Context, req notification.Request) error {
	s.calls = append(s.calls, req)
	return s.err
}

func TestNewRegistry_Empty(t *testing.T) {
	r := notification.NewRegistry()
	require.NotNil(t, r)

	for _, typ := range notification.AllTypes {
		_, ok := r.Lookup(typ)
		assert.False(t, ok, "type %s should not be registered", typ)
	}
	assert.Empty(t, r.Types())
}

func TestNewRegistry_LastDuplicateWins(t *testing.T) {
	tests := []struct {
		name       string
		strategies []*stubStrategy
		want       string
	}{
		{
			name: "two duplicates",
			strategies: []*stubStrategy{
				{name: "first", typ: notification.TypeEmail},
				{name: "second", typ: notification.TypeEmail},
			},
			want: "second",
		},
		{
			name: "duplicates interleaved with other types",
			strategies: []*stubStrategy{
				{name: "email-1", typ: notification.TypeEmail},
				{name: "sms", typ: notification.TypeSMS},
				{name: "email-2", typ: notification.TypeEmail},
				{name: "push", typ: notification.TypePush},
				{name: "email-3", typ: notification.TypeEmail},
			},
			want: "email-3",
		},
		{
			name:       "single",
			strategies: []*stubStrategy{{name: "only", typ: notification.TypeEmail}},
			want:       "only",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := make([]notification.Strategy, 0, len(tc.strategies))
			for _, s := range tc.strategies {
				in = append(in, s)
			}
			r := notification.NewRegistry(in...)

			got, ok := r.Lookup(notification.TypeEmail)
			require.True(t, ok)
			assert.Equal(t, tc.want, got.(*stubStrategy).name)
		})
	}
}

func TestRegistry_Types(t *testing.T) {
	r := notification.NewRegistry(
		&stubStrategy{typ: notification.TypeSMS},
		&stubStrategy{typ: notification.TypeEmail},
		&stubStrategy{typ: notification.TypeSMS},
	)
	assert.Equal(t, []notification.Type{notification.TypeEmail, notification.TypeSMS}, r.Types())
}

func TestNewRegistry_SkipsNil(t *testing.T) {
	r := notification.NewRegistry(nil, &stubStrategy{typ: notification.TypeEmail})
	_, ok := r.Lookup(notification.TypeEmail)
	assert.True(t, ok)
}
