package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bookstore-backend/config"
)

func TestRenderConfirmEmail(t *testing.T) {
	cfg := &config.Config{AppName: "bookstore", CompanyName: "BookS", VerifyEmailURL: "http://x/verify"}
	exp := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	data := NewConfirmEmailData(cfg, "Ann", "a@b.com", "http://x/verify?token=abc&x=1", WithExpiresAt(exp))

	subject, text, html, err := Render(ConfirmEmail, data)
	require.NoError(t, err)
	assert.Contains(t, subject, "BookS")
	assert.Contains(t, text, "Hi Ann")
	assert.Contains(t, text, "http://x/verify?token=abc&x=1")
	assert.Contains(t, text, "04 March 2025, 10:30")
	assert.Contains(t, html, `href="http://x/verify?token=abc&amp;x=1"`)
}

func TestRenderDefaultsAndUnknownTemplate(t *testing.T) {
	_, text, _, err := Render(ConfirmEmail, map[string]any{"VerifyURL": "http://v"})
	require.NoError(t, err)
	assert.Contains(t, text, "Hi there")
	assert.Contains(t, text, "BookS")

	_, _, _, err = Render("missing", nil)
	assert.Error(t, err)
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "fb", defaultFn("fb", "  "))
	assert.Equal(t, "fb", defaultFn("fb", nil))
	assert.Equal(t, "fb", defaultFn("fb", 0))
	assert.Equal(t, 3, defaultFn("fb", 3))
	assert.Equal(t, "v", defaultFn("fb", "v"))
}
