package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifyd/internal/config"
	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NOTIFYD_DATA_DIR", t.TempDir())
	t.Setenv("LOG_OUTPUT", "file")
	t.Setenv("EVENT_BROKER", "none")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRequestFlags(t *testing.T) {
	f := requestFlags{
		recipient:    "a@b.com",
		subject:      "S",
		templateName: "verification",
		notifType:    "email",
		category:     "verification",
		vars:         map[string]string{"name": "John Doe"},
		varsJSON:     `{"verificationCode": 123456, "name": "overridden"}`,
	}
	req, err := f.request()
	require.NoError(t, err)

	assert.Equal(t, notification.TypeEmail, req.Type)
	assert.Equal(t, notification.CategoryVerification, req.Category)
	assert.Equal(t, "John Doe", req.TemplateVariables["name"])
	assert.Equal(t, json.Number("123456"), req.TemplateVariables["verificationCode"])
	assert.NoError(t, req.Validate())
}

func TestRequestFlags_BadJSON(t *testing.T) {
	f := requestFlags{varsJSON: `{`}
	_, err := f.request()
	assert.ErrorContains(t, err, "--vars-json")
}

func TestRequestFlags_NoVars(t *testing.T) {
	req, err := (&requestFlags{notifType: "EMAIL"}).request()
	require.NoError(t, err)
	assert.Nil(t, req.TemplateVariables)
}

func TestParseTransportID(t *testing.T) {
	id, err := parseTransportID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseTransportID(bad)
		assert.Error(t, err, bad)
	}
}

func TestRenderTransports(t *testing.T) {
	var buf bytes.Buffer
	renderTransports(&buf, nil)
	assert.Equal(t, "no transport configurations\n", buf.String())

	buf.Reset()
	renderTransports(&buf, []*storage.TransportConfig{
		{ID: 1, Host: "sandbox.smtp.mailtrap.io", Port: 2525, FromAddress: "no-reply@example.com", IsActive: true},
		{ID: 2, Host: "smtp.example.com", Port: 587},
	})
	out := buf.String()
	assert.Contains(t, out, "HOST")
	assert.Contains(t, out, "sandbox.smtp.mailtrap.io")
	assert.Contains(t, out, "smtp.example.com")
	assert.Contains(t, out, "yes")
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "notifyd dev"))
}

func TestTransportCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOTIFYD_DB_PATH", dir+"/notifyd.db")

	run := func(args ...string) string {
		t.Helper()
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append([]string{"--env-file", ""}, args...))
		t.Setenv("NOTIFYD_DATA_DIR", dir)
		require.NoError(t, root.Execute(), out.String())
		return out.String()
	}

	out := run("transport", "add", "--host", "sandbox.smtp.mailtrap.io", "--port", "2525",
		"--from", "no-reply@example.com", "--username", "u", "--password", "p", "--auth", "--active")
	assert.Contains(t, out, "created transport 1")

	out = run("transport", "list")
	assert.Contains(t, out, "sandbox.smtp.mailtrap.io")

	out = run("transport", "deactivate", "1")
	assert.Contains(t, out, "deactivate done")

	out = run("transport", "delete", "1")
	assert.Contains(t, out, "delete done")

	out = run("transport", "list")
	assert.Contains(t, out, "no transport configurations")
}

func TestSendWithoutActiveTransport(t *testing.T) {
	_, err := runCLI(t, "send", "--to", "a@b.com", "--subject", "S", "--template", "general",
		"--var", "title=Hi", "--var", "body=Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), notification.KindTransportUnavailable)
}

func TestSendInvalidRequest(t *testing.T) {
	_, err := runCLI(t, "send", "--subject", "S", "--template", "general")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient")
}

func TestPublishRequiresValidRequest(t *testing.T) {
	_, err := runCLI(t, "publish", "--broker", "kafka", "--subject", "S")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient")
}

func TestNewApp_StartupFailureReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.AppConfig{
		DataDir:         dir,
		LogOutput:       "file",
		TemplatesDir:    filepath.Join(dir, "does-not-exist"),
		SMTPTimeout:     time.Second,
		EventBusWorkers: 1,
	}

	var (
		a   *app
		err error
	)
	require.NotPanics(t, func() {
		a, err = newApp(context.Background(), cfg, cfg.LogOutput)
	})
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "loading templates")

	// The database opened before the failure was closed, so it can be opened again.
	db, _, err := storage.NewSQLiteDB(cfg.DatabasePath())
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestSend_BadTemplatesDir(t *testing.T) {
	t.Setenv("NOTIFYD_TEMPLATES_DIR", filepath.Join(t.TempDir(), "missing"))
	var err error
	require.NotPanics(t, func() {
		_, err = runCLI(t, "send", "--to", "a@b.com", "--subject", "S", "--template", "general")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading templates")
}
