package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes
const maxBcryptInput = 72

// PasswordService hashes and verifies passwords and enforces the registration policy
type PasswordService struct {
	policy     PasswordPolicy
	bcryptCost int
}

func NewPasswordService(policy PasswordPolicy, bcryptCost int) *PasswordService {
	return &PasswordService{
		policy:     policy,
		bcryptCost: bcryptCost,
	}
}

func (s *PasswordService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong.WithData("max_length", maxBcryptInput)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword never matches input bcrypt would have truncated
func (s *PasswordService) CheckPassword(password, hash string) bool {
	if len(password) > maxBcryptInput {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword returns the first policy rule the password breaks
func (s *PasswordService) ValidatePassword(password string) error {
	// lengths are in bytes, matching what bcrypt hashes
	if len(password) < s.policy.MinLength {
		return ErrPasswordTooShort.WithData("min_length", s.policy.MinLength)
	}
	if len(password) > s.policy.MaxLength {
		return ErrPasswordTooLong.WithData("max_length", s.policy.MaxLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	switch {
	case s.policy.RequireUppercase && !hasUpper:
		return ErrPasswordRequireUppercase
	case s.policy.RequireLowercase && !hasLower:
		return ErrPasswordRequireLowercase
	case s.policy.RequireDigit && !hasDigit:
		return ErrPasswordRequireDigit
	case s.policy.RequireSpecialChar && !hasSpecial:
		return ErrPasswordRequireSpecial
	}

	lower := strings.ToLower(password)
	for _, weak := range s.policy.Blacklist {
		if strings.Contains(lower, strings.ToLower(weak)) {
			return ErrPasswordInBlacklist
		}
	}
	return nil
}

func (s *PasswordService) Policy() PasswordPolicy {
	return s.policy
}
