package services

import (
	"github.com/yukikurage/taskforge-api/internal/dto"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
)

func (suite *ServiceTestSuite) register(name, email, password string) *models.User {
	user, err := suite.auth.Register(RegisterInput{Name: name, Email: email, Password: password})
	suite.Require().NoError(err)
	return user
}

func (suite *ServiceTestSuite) TestRegister() {
	user := suite.register("Alice", "  Alice@Example.com ", "secret1")
	suite.Equal("alice@example.com", user.Email)
	suite.Equal(models.RoleMember, user.Role)
	suite.True(user.IsActive)
	suite.NotEqual("secret1", user.PasswordHash)

	_, err := suite.auth.Register(RegisterInput{Name: "Again", Email: "alice@example.com", Password: "secret1"})
	suite.ErrorIs(err, ErrEmailTaken)
}

func (suite *ServiceTestSuite) TestRegister_BootstrapAdmin() {
	root := suite.register("Root", "ROOT@example.com", "secret1")
	suite.Equal(models.RoleAdmin, root.Role)
}

func (suite *ServiceTestSuite) TestRegister_ValidationDetails() {
	_, err := suite.auth.Register(RegisterInput{Name: "", Email: "not-an-email", Password: "123"})

	var apiErr *apierrors.APIError
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)

	details, ok := apiErr.Details.([]dto.FieldError)
	suite.Require().True(ok)
	fields := make([]string, len(details))
	for i, d := range details {
		fields[i] = d.Field
	}
	suite.ElementsMatch([]string{"name", "email", "password"}, fields)
}

func (suite *ServiceTestSuite) TestLogin() {
	suite.register("Alice", "alice@example.com", "secret1")

	user, err := suite.auth.Login(LoginInput{Email: "ALICE@example.com", Password: "secret1"})
	suite.Require().NoError(err)
	suite.Equal("Alice", user.Name)

	_, err = suite.auth.Login(LoginInput{Email: "alice@example.com", Password: "wrong"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.auth.Login(LoginInput{Email: "nobody@example.com", Password: "secret1"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *ServiceTestSuite) TestLogin_Deactivated() {
	admin := suite.register("Root", "root@example.com", "secret1")
	user := suite.register("Alice", "alice@example.com", "secret1")

	inactive := false
	_, err := suite.auth.AdminUpdateUser(admin.ID, user.ID, AdminUpdateUserInput{IsActive: &inactive})
	suite.Require().NoError(err)

	_, err = suite.auth.Login(LoginInput{Email: "alice@example.com", Password: "secret1"})
	suite.ErrorIs(err, ErrAccountDeactivated)
}

func (suite *ServiceTestSuite) TestLogin_ExternalProviderHasNoPassword() {
	user := &models.User{Name: "G", Email: "g@example.com", Role: models.RoleMember, IsActive: true, Provider: models.ProviderGoogle}
	suite.Require().NoError(suite.store.Users.Create(user))

	_, err := suite.auth.Login(LoginInput{Email: "g@example.com", Password: "anything"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	err = suite.auth.ChangePassword(user.ID, ChangePasswordInput{CurrentPassword: "x", NewPassword: "secret2"})
	suite.ErrorIs(err, ErrNoLocalPassword)
}

func (suite *ServiceTestSuite) TestUpdateProfile() {
	alice := suite.register("Alice", "alice@example.com", "secret1")
	suite.register("Bob", "bob@example.com", "secret1")

	name := "  Alice Liddell "
	updated, err := suite.auth.UpdateProfile(alice.ID, UpdateProfileInput{Name: &name})
	suite.Require().NoError(err)
	suite.Equal("Alice Liddell", updated.Name)

	taken := "BOB@example.com"
	_, err = suite.auth.UpdateProfile(alice.ID, UpdateProfileInput{Email: &taken})
	suite.ErrorIs(err, ErrEmailInUse)

	same := "alice@example.com"
	_, err = suite.auth.UpdateProfile(alice.ID, UpdateProfileInput{Email: &same})
	suite.NoError(err)

	_, err = suite.auth.UpdateProfile(999, UpdateProfileInput{Name: &name})
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestChangePassword() {
	alice := suite.register("Alice", "alice@example.com", "secret1")

	err := suite.auth.ChangePassword(alice.ID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "secret2"})
	suite.ErrorIs(err, ErrIncorrectPassword)

	var apiErr *apierrors.APIError
	err = suite.auth.ChangePassword(alice.ID, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "123"})
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)

	suite.Require().NoError(suite.auth.ChangePassword(alice.ID, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "secret2"}))

	_, err = suite.auth.Login(LoginInput{Email: "alice@example.com", Password: "secret2"})
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestAdminUpdateUser() {
	admin := suite.register("Root", "root@example.com", "secret1")
	alice := suite.register("Alice", "alice@example.com", "secret1")

	manager := models.RoleManager
	updated, err := suite.auth.AdminUpdateUser(admin.ID, alice.ID, AdminUpdateUserInput{Role: &manager})
	suite.Require().NoError(err)
	suite.Equal(models.RoleManager, updated.Role)

	bogus := models.Role("Owner")
	var apiErr *apierrors.APIError
	_, err = suite.auth.AdminUpdateUser(admin.ID, alice.ID, AdminUpdateUserInput{Role: &bogus})
	suite.Require().ErrorAs(err, &apiErr)
	suite.Equal(apierrors.ErrCodeValidation, apiErr.Code)

	_, err = suite.auth.AdminUpdateUser(admin.ID, admin.ID, AdminUpdateUserInput{Role: &manager})
	suite.ErrorIs(err, ErrCannotModifySelf)

	_, err = suite.auth.AdminUpdateUser(admin.ID, 999, AdminUpdateUserInput{Role: &manager})
	suite.ErrorIs(err, ErrUserNotFound)
}
