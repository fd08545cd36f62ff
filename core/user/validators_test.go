package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := newValidator()

	tests := []struct {
		name    string
		nu      NewUser
		wantErr map[string]string
	}{
		{name: "valid", nu: NewUser{Username: " Amy_Pond ", Password: "correct-horse-42", Name: "Amy Pond", Role: " Student "}},
		{
			name: "short password", nu: NewUser{Username: "amy", Password: "abc12", Name: "Amy Pond", Role: RoleStudent},
			wantErr: map[string]string{"password": pwdMinLenText},
		},
		{
			name: "whitespace in password", nu: NewUser{Username: "amy", Password: "correct horse 42", Name: "Amy Pond", Role: RoleStudent},
			wantErr: map[string]string{"password": pwdNoSpaceText},
		},
		{
			name: "numeric password", nu: NewUser{Username: "amy", Password: "1234567890", Name: "Amy Pond", Role: RoleStudent},
			wantErr: map[string]string{"password": pwdNotAllNumText},
		},
		{
			name: "password similar to name", nu: NewUser{Username: "amy", Password: "amypond12", Name: "Amy Pond", Role: RoleStudent},
			wantErr: map[string]string{"password": pwdAttrSimText},
		},
		{
			name: "password similar to username", nu: NewUser{Username: "bobby_tables", Password: "bobby_tables1", Name: "Robert", Role: RoleStudent},
			wantErr: map[string]string{"password": pwdAttrSimText},
		},
		{
			name: "unknown role", nu: NewUser{Username: "amy", Password: "correct-horse-42", Name: "Amy Pond", Role: "admin"},
			wantErr: map[string]string{"role": userRoleText},
		},
		{
			name: "invalid username", nu: NewUser{Username: "amy pond", Password: "correct-horse-42", Name: "Amy Pond", Role: RoleStudent},
			wantErr: map[string]string{"username": "only alphanumeric characters and underscores are allowed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := tt.nu
			err := nu.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			got := make(map[string]string, len(vErrs))
			for _, fe := range vErrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

func TestNewUser_Validate_cleans(t *testing.T) {
	validate, _ := newValidator()

	nu := NewUser{Username: " Amy_Pond ", Password: "correct-horse-42", Name: "  Amy Pond ", Role: "STUDENT"}
	require.NoError(t, nu.Validate(validate))
	assert.Equal(t, "amy_pond", nu.Username)
	assert.Equal(t, "Amy Pond", nu.Name)
	assert.Equal(t, RoleStudent, nu.Role)
}

func TestUser_password(t *testing.T) {
	var usr User
	require.NoError(t, usr.SetPassword("correct-horse-42"))
	assert.NotEqual(t, []byte("correct-horse-42"), usr.PasswordHash)
	assert.NoError(t, usr.CheckPassword("correct-horse-42"))
	assert.Error(t, usr.CheckPassword("wrong-horse-42"))
}
