package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var links = Links{AppName: "LearnFlow", AppURL: "https://learnflow.test", SupportURL: "https://learnflow.test/help"}

func TestRender_Welcome(t *testing.T) {
	data := NewWelcomeData(links, "Ada", "ada@example.com")

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)

	assert.Equal(t, "Welcome to LearnFlow", subject)
	assert.Contains(t, text, "Hi Ada,")
	assert.Contains(t, text, "ada@example.com")
	assert.Contains(t, html, `<a href="https://learnflow.test">`)
}

func TestRender_RoleElevated(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	data := NewRoleElevatedData(links, "Ada", "ada@example.com", "teacher", WithTime(at))

	subject, text, html, err := Render(RoleElevated, data)
	require.NoError(t, err)

	assert.Equal(t, "Your LearnFlow role is now teacher", subject)
	assert.Contains(t, text, "04 May 2026, 10:30 UTC")
	assert.Contains(t, html, "TEACHER")
}

func TestRender_EscapesHTML(t *testing.T) {
	data := NewWelcomeData(links, "<script>x</script>", "ada@example.com")
	_, _, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>x</script>")
}

func TestRender_DefaultsWhenEmpty(t *testing.T) {
	subject, text, _, err := Render(Welcome, NewWelcomeData(Links{}, "", "x@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to LearnFlow", subject)
	assert.Contains(t, text, "Hi there,")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("login_otp", nil)
	assert.Error(t, err)
}
