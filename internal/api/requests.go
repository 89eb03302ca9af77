// internal/api/requests.go
//
// Request payloads and their validation.
//
// Validation reuses the config package's shared go-playground/validator
// instance, so any custom rules registered at boot apply here too.
// Messages returned to callers name the field but never echo the value.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aurelle/storefront/internal/assist"
)

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type recoverRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	ResetURL string `json:"resetUrl" validate:"required,url"`
	Password string `json:"password" validate:"required,min=8"`
}

type activateRequest struct {
	ActivationURL string `json:"activationUrl" validate:"required,url"`
	Password      string `json:"password"      validate:"required,min=8"`
}

type chatRequest struct {
	Messages []assist.Message `json:"messages" validate:"required,min=1,dive"`
}

// decodeAndValidate unmarshals the body into dst and applies its
// validate tags.  The returned error message is safe to show callers.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("request body must be valid JSON")
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s is missing or invalid", strings.ToLower(verrs[0].Field()))
		}
		return errors.New("invalid request payload")
	}
	return nil
}
