// Package forms validates user-submitted form data. Field-level rules
// live here; cross-entity rules (group existence, image sniffing) are
// reported into the same error map by the handlers so templates render
// every failure next to its field.
package forms

import "strings"

const (
	msgRequired      = "This field is required."
	msgPasswordShort = "Password must be at least 6 characters."
	msgNoMatch       = "Passwords do not match."
)

// PostForm carries a post create/edit submission.
type PostForm struct {
	Text    string
	GroupID string // raw select value, empty for no group
	Errors  map[string]string
}

func (f *PostForm) Validate() bool {
	f.Errors = map[string]string{}
	if strings.TrimSpace(f.Text) == "" {
		f.Errors["text"] = msgRequired
	}
	return len(f.Errors) == 0
}

// AddError attaches a non-field-level validation failure (unknown group,
// rejected image) so it renders with everything else.
func (f *PostForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = msg
}

func (f *PostForm) Valid() bool { return len(f.Errors) == 0 }

// CommentForm carries a comment submission.
type CommentForm struct {
	Text   string
	Errors map[string]string
}

func (f *CommentForm) Validate() bool {
	f.Errors = map[string]string{}
	if strings.TrimSpace(f.Text) == "" {
		f.Errors["text"] = msgRequired
	}
	return len(f.Errors) == 0
}

// SignupForm carries a registration submission.
type SignupForm struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
	Confirm     string
	Errors      map[string]string
}

func (f *SignupForm) Validate() bool {
	f.Errors = map[string]string{}
	if strings.TrimSpace(f.Username) == "" {
		f.Errors["username"] = msgRequired
	}
	if strings.TrimSpace(f.Email) == "" {
		f.Errors["email"] = msgRequired
	}
	if len(f.Password) < 6 {
		f.Errors["password"] = msgPasswordShort
	}
	if f.Password != f.Confirm {
		f.Errors["confirm"] = msgNoMatch
	}
	return len(f.Errors) == 0
}

func (f *SignupForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = msg
}

// LoginForm carries a login submission.
type LoginForm struct {
	Username string
	Password string
	Errors   map[string]string
}

func (f *LoginForm) Validate() bool {
	f.Errors = map[string]string{}
	if strings.TrimSpace(f.Username) == "" {
		f.Errors["username"] = msgRequired
	}
	if f.Password == "" {
		f.Errors["password"] = msgRequired
	}
	return len(f.Errors) == 0
}

func (f *LoginForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = msg
}

// PasswordChangeForm carries an authenticated password change.
type PasswordChangeForm struct {
	Current string
	New     string
	Confirm string
	Errors  map[string]string
}

func (f *PasswordChangeForm) Validate() bool {
	f.Errors = map[string]string{}
	if f.Current == "" {
		f.Errors["current"] = msgRequired
	}
	if len(f.New) < 6 {
		f.Errors["new"] = msgPasswordShort
	}
	if f.New != f.Confirm {
		f.Errors["confirm"] = msgNoMatch
	}
	return len(f.Errors) == 0
}

func (f *PasswordChangeForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = msg
}

// PasswordResetForm carries the email asking for a reset link.
type PasswordResetForm struct {
	Email  string
	Errors map[string]string
}

func (f *PasswordResetForm) Validate() bool {
	f.Errors = map[string]string{}
	if strings.TrimSpace(f.Email) == "" {
		f.Errors["email"] = msgRequired
	}
	return len(f.Errors) == 0
}

// NewPasswordForm carries the new password behind a reset token.
type NewPasswordForm struct {
	Password string
	Confirm  string
	Errors   map[string]string
}

func (f *NewPasswordForm) Validate() bool {
	f.Errors = map[string]string{}
	if len(f.Password) < 6 {
		f.Errors["password"] = msgPasswordShort
	}
	if f.Password != f.Confirm {
		f.Errors["confirm"] = msgNoMatch
	}
	return len(f.Errors) == 0
}

func (f *NewPasswordForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	f.Errors[field] = msg
}
