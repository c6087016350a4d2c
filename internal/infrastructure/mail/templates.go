package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome, {{.Name}}</h2>
  <p>An administrator created an account for you.</p>
  <table cellpadding="4">
    <tr><td><strong>Username</strong></td><td>{{.Username}}</td></tr>
    <tr><td><strong>Temporary password</strong></td><td><code>{{.Password}}</code></td></tr>
  </table>
  <p>You will be asked to choose a new password at your first login.</p>
  <p><a href="{{.LoginURL}}">Sign in</a></p>
</body>
</html>`))

var passwordChangedTmpl = template.Must(template.New("password_changed").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Password changed</h2>
  <p>Hello {{.Name}}, the password of your account <strong>{{.Username}}</strong> was just changed.</p>
  <p>If you did not make this change, contact your administrator immediately.</p>
  <p><a href="{{.LoginURL}}">Sign in</a></p>
</body>
</html>`))

type templateData struct {
	Name     string
	Username string
	Password string
	LoginURL string
}

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
