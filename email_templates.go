package fideauth

import (
	"bytes"
	"fmt"
	"html/template"

	goerrors "github.com/goliatone/go-errors"
)

type emailCopy struct {
	confirmSubject string
	confirmIntro   string
	confirmAction  string
	resetSubject   string
	resetIntro     string
	resetAction    string
	validity       string
	ignore         string
}

// Localized strings for the two outbound flows. The reset validity copy says
// 24 hours even though redemption enforces a tighter window; see token.go.
var emailLocales = map[string]emailCopy{
	"en": {
		confirmSubject: "Confirm your FastFide account",
		confirmIntro:   "Hello %s, welcome to FastFide!",
		confirmAction:  "Confirm my email",
		resetSubject:   "Reset your FastFide password",
		resetIntro:     "Hello, a password reset was requested for your account.",
		resetAction:    "Choose a new password",
		validity:       "This link is valid for 24 hours.",
		ignore:         "If you did not request this, you can ignore this email.",
	},
	"fr": {
		confirmSubject: "Confirmez votre compte FastFide",
		confirmIntro:   "Bonjour %s, bienvenue sur FastFide !",
		confirmAction:  "Confirmer mon email",
		resetSubject:   "Réinitialisez votre mot de passe FastFide",
		resetIntro:     "Bonjour, une réinitialisation de mot de passe a été demandée pour votre compte.",
		resetAction:    "Choisir un nouveau mot de passe",
		validity:       "Ce lien est valable 24 heures.",
		ignore:         "Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.",
	},
}

func localeCopy(locale string) emailCopy {
	if c, ok := emailLocales[locale]; ok {
		return c
	}
	return emailLocales["en"]
}

var emailBodyTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #333;">
  <p>{{.Intro}}</p>
  <p><a href="{{.Link}}" style="display: inline-block; padding: 12px 24px; background: #2d6cdf; color: #fff; border-radius: 6px; text-decoration: none;">{{.Action}}</a></p>
  <p>{{.Validity}}</p>
  <p style="color: #888; font-size: 12px;">{{.Ignore}}</p>
</body>
</html>`))

func renderEmail(intro, action, validity, ignore, link string) (html string, text string, err error) {
	var buf bytes.Buffer
	err = emailBodyTmpl.Execute(&buf, struct {
		Intro, Action, Validity, Ignore, Link string
	}{intro, action, validity, ignore, link})
	if err != nil {
		return "", "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render notification body")
	}

	text = fmt.Sprintf("%s\n\n%s: %s\n\n%s\n%s\n", intro, action, link, validity, ignore)
	return buf.String(), text, nil
}

func sprintfIntro(format, name string) string {
	return fmt.Sprintf(format, name)
}

// displayName picks the greeting for the recipient: merchants are addressed
// by business name, customers by first name, with the email as fallback.
func displayName(userType, firstName, businessName, email string) string {
	if userType == UserTypeMerchant && businessName != "" {
		return businessName
	}
	if firstName != "" {
		return firstName
	}
	return email
}
