// file: model/request.go

package model

// RegistrationRequest carries the fields of a registration form after
// extraction. Required-ness is enforced during extraction; the tags here
// only describe the shape of values that were supplied.
type RegistrationRequest struct {
	UserName        string `json:"user_name" validate:"omitempty,max=25,alphanum"`
	DisplayName     string `json:"display_name" validate:"omitempty,max=50"`
	Email           string `json:"email" validate:"omitempty,max=150,email"`
	Title           string `json:"title" validate:"omitempty,max=150"`
	Password        string `json:"password" validate:"omitempty,min=8,max=50"`
	PasswordConfirm string `json:"passwordc"`
	AdminMode       bool   `json:"admin"`
	AddGroups       string `json:"add_groups"`
	SkipActivation  bool   `json:"skip_activation"`
	CaptchaToken    string `json:"captcha"`
	CSRFToken       string `json:"csrf_token"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	UserName string `json:"user_name" validate:"required,max=25"`
	Password string `json:"password" validate:"required"`
}

// ActivateRequest defines the payload for account activation.
type ActivateRequest struct {
	Token string `json:"token" validate:"required,hexadecimal,len=64"`
}

// RegistrationResult is the structured body returned to asynchronous callers.
type RegistrationResult struct {
	Errors    int `json:"errors"`
	Successes int `json:"successes"`
}
