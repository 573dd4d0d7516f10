package validator

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Rules shared by the request DTOs of the HTTP API
var (
	Username = []validation.Rule{
		validation.Required,
		validation.Length(3, 50),
		validation.Match(usernamePattern).Error("must contain only letters, digits, '.', '_' or '-'"),
	}
	Email = []validation.Rule{
		validation.Required,
		validation.Length(3, 100),
		is.EmailFormat,
	}
	DisplayName = []validation.Rule{
		validation.Length(1, 100),
	}
	AvatarURL = []validation.Rule{
		validation.Length(0, 500),
		is.URL,
	}
)
