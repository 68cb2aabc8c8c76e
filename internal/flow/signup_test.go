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

func newSignup(t *testing.T) (*Signup, *mocks.MockAuthAPI, *mocks.MockSessionSink, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAuthAPI(ctrl)
	sink := mocks.NewMockSessionSink(ctrl)
	return NewSignup(api, sink), api, sink, ctrl
}

// openChallenge — довести машину до OTPOpen.
func openChallenge(t *testing.T, f *Signup, api *mocks.MockAuthAPI) {
	t.Helper()
	api.EXPECT().SignupSendOTP(gomock.Any(), "09123456789", "abc12345").Return("code sent", nil)
	require.NoError(t, f.SubmitCredentials(context.Background(), "09123456789", "abc12345"))
	require.Equal(t, SignupOTPOpen, f.State())
}

// Сценарий целиком: запрос кода -> челлендж с кулдауном 60 ->
// вставка кода -> автопроверка -> вход; PendingCredentials уничтожены.
func TestSignup_HappyPath(t *testing.T) {
	t.Parallel()

	f, api, sink, ctrl := newSignup(t)
	defer ctrl.Finish()

	openChallenge(t, f, api)
	require.Equal(t, otp.CooldownSeconds, f.Challenge().Remaining())
	require.Equal(t, otp.PurposeSignup, f.Challenge().Purpose)

	api.EXPECT().SignupVerifyOTP(gomock.Any(), "09123456789", "4321").Return(authResponse(), nil)
	sink.EXPECT().Login(gomock.Any(), authResponse().User, models.TokenPair{AccessToken: "A", RefreshToken: "R"}).Return(nil)

	// Полный код запускает проверку сам, без явного submit.
	require.NoError(t, f.Paste(context.Background(), "4321"))

	require.Equal(t, SignupAuthenticated, f.State())
	require.Nil(t, f.Challenge())
}

func TestSignup_EnterDigit_AutoVerifiesOnFourth(t *testing.T) {
	t.Parallel()

	f, api, sink, ctrl := newSignup(t)
	defer ctrl.Finish()

	openChallenge(t, f, api)

	api.EXPECT().SignupVerifyOTP(gomock.Any(), "09123456789", "1234").Return(authResponse(), nil)
	sink.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.EnterDigit(context.Background(), '1'))
	require.NoError(t, f.EnterDigit(context.Background(), '2'))
	require.NoError(t, f.EnterDigit(context.Background(), '3'))
	require.Equal(t, SignupOTPOpen, f.State(), "no verification before the code is complete")
	require.NoError(t, f.EnterDigit(context.Background(), '4'))
	require.Equal(t, SignupAuthenticated, f.State())
}

func TestSignup_SubmitCredentials_Failure(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newSignup(t)
	defer ctrl.Finish()

	boom := errors.New("phone already registered")
	api.EXPECT().SignupSendOTP(gomock.Any(), "09123456789", "abc12345").Return("", boom)

	err := f.SubmitCredentials(context.Background(), "09123456789", "abc12345")
	require.ErrorIs(t, err, boom)
	require.Equal(t, SignupEnteringCredentials, f.State())
	require.Nil(t, f.Challenge())
}

// Неверный код: цифры очищены, фокус на первом слоте, кулдаун
// сохраняется — внеочередного resend не полагается.
func TestSignup_VerifyFailure_ClearsDigitsKeepsCooldown(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newSignup(t)
	defer ctrl.Finish()

	openChallenge(t, f, api)

	for i := 0; i < 20; i++ {
		f.Tick()
	}

	boom := errors.New("otp mismatch")
	api.EXPECT().SignupVerifyOTP(gomock.Any(), "09123456789", "9999").Return(nil, boom)

	err := f.Paste(context.Background(), "9999")
	require.ErrorIs(t, err, boom)

	require.Equal(t, SignupOTPOpen, f.State())
	_, complete := f.Challenge().Code()
	require.False(t, complete)
	require.Equal(t, 0, f.Challenge().Focus())
	require.Equal(t, otp.CooldownSeconds-20, f.Challenge().Remaining())
}

func TestSignup_Resend(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newSignup(t)
	defer ctrl.Finish()

	openChallenge(t, f, api)

	// До истечения кулдауна resend заблокирован.
	require.ErrorIs(t, f.Resend(context.Background()), ErrCooldownActive)

	for i := 0; i < otp.CooldownSeconds; i++ {
		f.Tick()
	}
	require.True(t, f.Challenge().CanResend())

	// Частично введённый код при resend не сбрасывается.
	require.NoError(t, f.EnterDigit(context.Background(), '7'))

	// Тот же payload, что и в исходном запросе.
	api.EXPECT().SignupSendOTP(gomock.Any(), "09123456789", "abc12345").Return("code sent", nil)
	require.NoError(t, f.Resend(context.Background()))

	require.Equal(t, otp.CooldownSeconds, f.Challenge().Remaining())
	require.Equal(t, "7", f.Challenge().Digit(0))
}

// Пользователь вернулся к вводу учётных данных, пока verify был
// в полёте: поздний ответ отброшен по эпохе, вход не происходит.
func TestSignup_StaleVerifyResponseDiscarded(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newSignup(t)
	defer ctrl.Finish()

	openChallenge(t, f, api)

	api.EXPECT().SignupVerifyOTP(gomock.Any(), "09123456789", "4321").DoAndReturn(
		func(context.Context, string, string) (*models.AuthResponse, error) {
			f.Abandon()
			return authResponse(), nil
		})

	err := f.Paste(context.Background(), "4321")
	require.ErrorIs(t, err, ErrStaleChallenge)

	// Брошенный flow не воскрешён: sink.Login не вызывался
	// (контроллер упал бы на незапланированном вызове).
	require.Equal(t, SignupEnteringCredentials, f.State())
	require.Nil(t, f.Challenge())
}

// Пользователь бросил flow, пока send-otp был в полёте: поздний успех
// не открывает челлендж и не возвращает машину в OTPOpen.
func TestSignup_StaleSendOTPResponseDiscarded(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newSignup(t)
	defer ctrl.Finish()

	api.EXPECT().SignupSendOTP(gomock.Any(), "09123456789", "abc12345").DoAndReturn(
		func(context.Context, string, string) (string, error) {
			f.Abandon()
			return "code sent", nil
		})

	err := f.SubmitCredentials(context.Background(), "09123456789", "abc12345")
	require.ErrorIs(t, err, ErrStaleChallenge)

	require.Equal(t, SignupEnteringCredentials, f.State())
	require.Nil(t, f.Challenge())
}

func TestSignup_Abandon_DiscardsChallengeAndCredentials(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newSignup(t)
	defer ctrl.Finish()

	openChallenge(t, f, api)
	require.NotNil(t, f.Challenge())

	f.Abandon()

	require.Equal(t, SignupEnteringCredentials, f.State())
	require.Nil(t, f.Challenge())

	// Flow можно начать заново.
	api.EXPECT().SignupSendOTP(gomock.Any(), "09123456789", "abc12345").Return("code sent", nil)
	require.NoError(t, f.SubmitCredentials(context.Background(), "09123456789", "abc12345"))
}

func TestSignup_VerifyRequiresCompleteCode(t *testing.T) {
	t.Parallel()

	f, api, _, ctrl := newSignup(t)
	defer ctrl.Finish()

	openChallenge(t, f, api)
	require.NoError(t, f.EnterDigit(context.Background(), '1'))

	require.ErrorIs(t, f.Verify(context.Background()), ErrVerifyNotReady)
}
