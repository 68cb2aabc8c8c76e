package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/flow/mocks"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/models"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/otp"
)

func newRecovery(t *testing.T) (*Recovery, *mocks.MockAuthAPI, *mocks.MockSessionSink, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAuthAPI(ctrl)
	sink := mocks.NewMockSessionSink(ctrl)
	return NewRecovery(api, sink), api, sink, ctrl
}

// openRecovery — довести машину до OTPOpen.
func openRecovery(t *testing.T, f *Recovery, api *mocks.MockAuthAPI) {
	t.Helper()
	api.EXPECT().RecoverySendOTP(gomock.Any(), "09123456789").Return("code sent", nil)
	require.NoError(t, f.SubmitPhone(context.Background(), "09123456789"))
	require.Equal(t, RecoveryOTPOpen, f.State())
}

func TestRecovery_HappyPath(t *testing.T) {
	t.Parallel()

	f, api, sink, ctrl := newRecovery(t)
	defer ctrl.Finish()

	// Ввод с персидскими цифрами: в API уходит как есть (нормализует
	// клиент), но челлендж запоминает локальную форму.
	api.EXPECT().RecoverySendOTP(gomock.Any(), "۹۱۲۳۴۵").Return("code sent", nil)
	require.NoError(t, f.SubmitPhone(context.Background(), "۹۱۲۳۴۵"))
	require.Equal(t, RecoveryOTPOpen, f.State())
	require.Equal(t, otp.PurposeRecovery, f.Challenge().Purpose)
	require.Equal(t, "0912345", f.Challenge().Phone)

	// Код и новый пароль собираются параллельно.
	f.Paste("4321")
	require.Equal(t, RecoveryOTPOpen, f.State(), "no auto-verify on recovery")
	require.False(t, f.CanVerify(), "password pair is still empty")

	f.SetNewPassword("newpass1", "newpass1")
	require.True(t, f.CanVerify())

	api.EXPECT().RecoveryVerifyOTP(gomock.Any(), "0912345", "4321", "newpass1").Return(authResponse(), nil)
	sink.EXPECT().Login(gomock.Any(), authResponse().User, models.TokenPair{AccessToken: "A", RefreshToken: "R"}).Return(nil)

	require.NoError(t, f.Verify(context.Background()))
	require.Equal(t, RecoveryAuthenticated, f.State())
	require.Nil(t, f.Challenge())
}

func TestRecovery_CanVerify_Gates(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newRecovery(t)
	defer ctrl.Finish()

	openRecovery(t, f, api)

	require.False(t, f.CanVerify(), "empty code and password")

	f.SetNewPassword("newpass1", "newpass1")
	require.False(t, f.CanVerify(), "code is incomplete")

	f.EnterDigit('1')
	f.EnterDigit('2')
	f.EnterDigit('3')
	require.False(t, f.CanVerify())
	f.EnterDigit('4')
	require.True(t, f.CanVerify())

	// Несовпадение подтверждения снова запрещает проверку.
	f.SetNewPassword("newpass1", "другое")
	require.False(t, f.CanVerify())

	require.ErrorIs(t, f.Verify(context.Background()), ErrVerifyNotReady)
}

func TestRecovery_VerifyFailure_ClearsDigitsKeepsCooldown(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newRecovery(t)
	defer ctrl.Finish()

	openRecovery(t, f, api)
	f.SetNewPassword("newpass1", "newpass1")
	f.Paste("9999")

	for i := 0; i < 15; i++ {
		f.Tick()
	}

	boom := errors.New("otp mismatch")
	api.EXPECT().RecoveryVerifyOTP(gomock.Any(), "09123456789", "9999", "newpass1").Return(nil, boom)

	require.ErrorIs(t, f.Verify(context.Background()), boom)

	require.Equal(t, RecoveryOTPOpen, f.State())
	_, complete := f.Challenge().Code()
	require.False(t, complete)
	require.Equal(t, otp.CooldownSeconds-15, f.Challenge().Remaining())
}

func TestRecovery_Resend(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newRecovery(t)
	defer ctrl.Finish()

	openRecovery(t, f, api)

	require.ErrorIs(t, f.Resend(context.Background()), ErrCooldownActive)

	for i := 0; i < otp.CooldownSeconds; i++ {
		f.Tick()
	}

	api.EXPECT().RecoverySendOTP(gomock.Any(), "09123456789").Return("code sent", nil)
	require.NoError(t, f.Resend(context.Background()))
	require.Equal(t, otp.CooldownSeconds, f.Challenge().Remaining())
}

// Возврат к вводу номера во время проверки: поздний ответ отброшен,
// набранный пароль не переживает возврат.
func TestRecovery_Back_DiscardsLateResponse(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newRecovery(t)
	defer ctrl.Finish()

	openRecovery(t, f, api)
	f.SetNewPassword("newpass1", "newpass1")
	f.Paste("4321")

	api.EXPECT().RecoveryVerifyOTP(gomock.Any(), "09123456789", "4321", "newpass1").DoAndReturn(
		func(context.Context, string, string, string) (*models.AuthResponse, error) {
			f.Back()
			return authResponse(), nil
		})

	require.ErrorIs(t, f.Verify(context.Background()), ErrStaleChallenge)
	require.Equal(t, RecoveryEnteringPhone, f.State())
	require.Nil(t, f.Challenge())
	require.False(t, f.CanVerify())
}

// Возврат к вводу номера, пока send-otp был в полёте: поздний успех
// не открывает челлендж заново.
func TestRecovery_StaleSendOTPResponseDiscarded(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newRecovery(t)
	defer ctrl.Finish()

	api.EXPECT().RecoverySendOTP(gomock.Any(), "09123456789").DoAndReturn(
		func(context.Context, string) (string, error) {
			f.Back()
			return "code sent", nil
		})

	err := f.SubmitPhone(context.Background(), "09123456789")
	require.ErrorIs(t, err, ErrStaleChallenge)

	require.Equal(t, RecoveryEnteringPhone, f.State())
	require.Nil(t, f.Challenge())
}

func TestRecovery_Back_AllowsRestart(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newRecovery(t)
	defer ctrl.Finish()

	openRecovery(t, f, api)
	f.Back()
	require.Equal(t, RecoveryEnteringPhone, f.State())

	api.EXPECT().RecoverySendOTP(gomock.Any(), "+989351112233").Return("code sent", nil)
	require.NoError(t, f.SubmitPhone(context.Background(), "+989351112233"))
	require.Equal(t, "09351112233", f.Challenge().Phone)
}

func TestRecovery_SubmitPhone_Failure(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newRecovery(t)
	defer ctrl.Finish()

	boom := errors.New("no account for this phone")
	api.EXPECT().RecoverySendOTP(gomock.Any(), "09123456789").Return("", boom)

	err := f.SubmitPhone(context.Background(), "09123456789")
	require.ErrorIs(t, err, boom)
	require.Equal(t, RecoveryEnteringPhone, f.State())
	require.ErrorIs(t, f.Err(), boom)
}
