package models

type PasswordRequirements struct {
	MinLength           int    `json:"minLength"`
	MaxLength           int    `json:"maxLength"`
	RequireUppercase    bool   `json:"requireUppercase"`
	RequireLowercase    bool   `json:"requireLowercase"`
	RequireNumbers      bool   `json:"requireNumbers"`
	RequireSpecialChars bool   `json:"requireSpecialChars"`
	SpecialChars        string `json:"specialChars"`
}

type PasswordValidationResult struct {
	IsValid      bool                 `json:"isValid"`
	Errors       []string             `json:"errors"`
	Requirements PasswordRequirements `json:"requirements"`
}
