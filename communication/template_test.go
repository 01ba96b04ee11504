package communication_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/goliatone/go-security/communication"
	"github.com/goliatone/go-security/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const welcomeTemplate = `<h1>{{ i18n("mail.welcome.title") }}</h1>
<p>{{ i18n("jmpsl.communication.exception.UnableToSendEmailException", vars) }}</p>
<p>{{ name }} / {{ appName }} / {{ baseServletPath }} / {{ currentYear }} / {{ serverUtcTime }}</p>`

func newRenderer(t *testing.T) *communication.DjangoRenderer {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "welcome.html"), []byte(welcomeTemplate), 0o600))

	catalog, err := i18n.NewCatalog("en_US")
	require.NoError(t, err)
	require.NoError(t, catalog.Add("en_US", []byte(`mail.welcome.title: "Welcome"`)))
	require.NoError(t, catalog.Add("pl_PL", []byte(`mail.welcome.title: "Witaj"`)))

	renderer, err := communication.NewDjangoRenderer(dir, catalog)
	require.NoError(t, err)
	return renderer
}

func TestDjangoRendererRender(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	renderer := newRenderer(t).WithClock(func() time.Time { return now })

	req := communication.NewMailRequest([]string{"ada@example.com"}, "noreply@example.com", "Hi").
		WithApp("Jmpsl", "https://app.example.com", "")

	body, err := renderer.Render(req, "welcome", map[string]any{
		"name": "Ada",
		"vars": map[string]any{"emailAddress": "ada@example.com"},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "<h1>Welcome</h1>")
	assert.Contains(t, body, "Unable to send email message to ada@example.com. Try again later.")
	assert.Contains(t, body, "Ada / Jmpsl / https://app.example.com / "+strconv.Itoa(2024)+" / 2024-03-01T12:00:00Z")
}

func TestDjangoRendererUsesRequestLocale(t *testing.T) {
	renderer := newRenderer(t)

	req := communication.NewMailRequest([]string{"ada@example.com"}, "noreply@example.com", "Hi").WithLocale("pl_PL")
	body, err := renderer.Render(req, "welcome", nil)
	require.NoError(t, err)
	assert.Contains(t, body, "<h1>Witaj</h1>")
}

func TestDjangoRendererMissingTemplate(t *testing.T) {
	_, err := newRenderer(t).Render(nil, "missing", nil)
	assert.Error(t, err)
}
