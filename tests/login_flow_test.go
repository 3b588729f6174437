// Package tests contains integration tests for login flow
package tests

import (
	"testing"
	"time"

	"github.com/sponsorly/branddesk/app/dto"
	"github.com/sponsorly/branddesk/app/services"
	businessflow "github.com/sponsorly/branddesk/business_flow"
	"github.com/sponsorly/branddesk/repository"
	testingutil "github.com/sponsorly/branddesk/testing"
	"github.com/sponsorly/branddesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.LoginFlow {
	t.Helper()

	userRepo := repository.NewUserRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)

	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour, "test-issuer", "test-audience",
		false, "", "", "test-secret-key-with-enough-entropy-for-hmac",
	)
	require.NoError(t, err)

	return businessflow.NewLoginFlow(userRepo, auditRepo, tokenService, testDB.DB)
}

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		loginFlow := newLoginFlow(t, testDB)
		ctx := testingutil.CreateTestContext()
		metadata := testMetadata()

		t.Run("SuccessfulLogin", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			response, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)

			assert.NotEmpty(t, response.AccessToken)
			assert.NotEmpty(t, response.RefreshToken)
			assert.Equal(t, "Bearer", response.TokenType)
			assert.Equal(t, int(time.Hour.Seconds()), response.ExpiresIn)
			assert.Equal(t, user.Email, response.User.Email)

			// Last login is stamped
			userRepo := repository.NewUserRepository(testDB.DB)
			updated, err := userRepo.ByID(ctx, user.ID)
			require.NoError(t, err)
			assert.NotNil(t, updated.LastLoginAt)
		})

		t.Run("EmailIsCaseInsensitive", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			response, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "  " + user.Email + " ",
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, user.Email, response.User.Email)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownUser", func(t *testing.T) {
			_, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "ghost@example.com",
				Password: testingutil.TestPassword,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(user).Update("is_active", utils.ToPtr(false)).Error)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		return nil
	})
	require.NoError(t, err)
}
