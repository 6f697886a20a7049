package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/BBMRI-cz/fhir-place/internal/models"
)

const DefaultSpecialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

type PasswordConfig struct {
	MinLength           int
	MaxLength           int
	RequireUppercase    bool
	RequireLowercase    bool
	RequireNumbers      bool
	RequireSpecialChars bool
	SpecialChars        string
}

func (p PasswordConfig) Requirements() models.PasswordRequirements {
	return models.PasswordRequirements{
		MinLength:           p.MinLength,
		MaxLength:           p.MaxLength,
		RequireUppercase:    p.RequireUppercase,
		RequireLowercase:    p.RequireLowercase,
		RequireNumbers:      p.RequireNumbers,
		RequireSpecialChars: p.RequireSpecialChars,
		SpecialChars:        p.SpecialChars,
	}
}

// DefaultPasswordRequirements is the policy used when the environment
// does not override it.
func DefaultPasswordRequirements() models.PasswordRequirements {
	return models.PasswordRequirements{
		MinLength:           8,
		MaxLength:           128,
		RequireUppercase:    true,
		RequireLowercase:    true,
		RequireNumbers:      true,
		RequireSpecialChars: true,
		SpecialChars:        DefaultSpecialChars,
	}
}

// LoadPasswordRequirements re-reads the password section of config.yaml and
// the PASSWORD_* environment variables. It is the loader behind the password
// requirements cache, so changes are picked up once the cached copy expires.
func LoadPasswordRequirements() (models.PasswordRequirements, error) {
	v, err := readConfig()
	if err != nil {
		return models.PasswordRequirements{}, err
	}

	// UnmarshalKey skips env bindings of nested keys, so decode the whole tree.
	var wrapper struct {
		Password PasswordConfig
	}
	if err := v.Unmarshal(&wrapper, decoderOptions); err != nil {
		return models.PasswordRequirements{}, fmt.Errorf("unmarshal password config: %w", err)
	}
	cfg := wrapper.Password
	if cfg.MinLength < 0 || cfg.MaxLength < cfg.MinLength {
		return models.PasswordRequirements{}, fmt.Errorf("invalid password length bounds %d..%d", cfg.MinLength, cfg.MaxLength)
	}

	return cfg.Requirements(), nil
}

func setPasswordDefaults(v *viper.Viper) {
	def := DefaultPasswordRequirements()
	v.SetDefault("password.minlength", def.MinLength)
	v.SetDefault("password.maxlength", def.MaxLength)
	v.SetDefault("password.requireuppercase", def.RequireUppercase)
	v.SetDefault("password.requirelowercase", def.RequireLowercase)
	v.SetDefault("password.requirenumbers", def.RequireNumbers)
	v.SetDefault("password.requirespecialchars", def.RequireSpecialChars)
	v.SetDefault("password.specialchars", def.SpecialChars)
}

// The PASSWORD_* names are shared with the rest of the deployment and
// carry no FHIRPLACE_ prefix.
func bindPasswordEnv(v *viper.Viper) {
	_ = v.BindEnv("password.minlength", "PASSWORD_MIN_LENGTH")
	_ = v.BindEnv("password.maxlength", "PASSWORD_MAX_LENGTH")
	_ = v.BindEnv("password.requireuppercase", "PASSWORD_REQUIRE_UPPERCASE")
	_ = v.BindEnv("password.requirelowercase", "PASSWORD_REQUIRE_LOWERCASE")
	_ = v.BindEnv("password.requirenumbers", "PASSWORD_REQUIRE_NUMBERS")
	_ = v.BindEnv("password.requirespecialchars", "PASSWORD_REQUIRE_SPECIAL_CHARS")
	_ = v.BindEnv("password.specialchars", "PASSWORD_SPECIAL_CHARS")
}
