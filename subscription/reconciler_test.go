package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tablemate/tablemate-web/backend"
	gwerrors "github.com/tablemate/tablemate-web/internal/errors"
	"github.com/tablemate/tablemate-web/session"
	fakesessionstore "github.com/tablemate/tablemate-web/session/storefakes"
	"github.com/tablemate/tablemate-web/subscription"
)

const (
	testSessionID         = "gw-session-1"
	testStoredToken       = "stored-token"
	testURLToken          = "url-token"
	testCheckoutSessionID = "cs_test_123"
	testEmail             = "admin@tablemate.app"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// fakeBackendAPI lets each test script the backend's behaviour per call.
type fakeBackendAPI struct {
	sessionInfoFn    func(ctx context.Context, token, checkoutSessionID string) (backend.SessionInfo, error)
	checkoutFn       func(ctx context.Context, token string, params backend.CheckoutParams) (backend.CheckoutSession, error)
	currentUserFn    func(ctx context.Context, token string) (backend.UserProfile, error)
	optInFn          func(ctx context.Context, token string, req backend.OptInRequest) error
	sessionInfoCalls int
}

func (f *fakeBackendAPI) SessionInfo(ctx context.Context, token, checkoutSessionID string) (backend.SessionInfo, error) {
	f.sessionInfoCalls++
	if f.sessionInfoFn == nil {
		return backend.SessionInfo{}, nil
	}
	return f.sessionInfoFn(ctx, token, checkoutSessionID)
}

func (f *fakeBackendAPI) CreateCheckoutSession(ctx context.Context, token string, params backend.CheckoutParams) (backend.CheckoutSession, error) {
	if f.checkoutFn == nil {
		return backend.CheckoutSession{}, nil
	}
	return f.checkoutFn(ctx, token, params)
}

func (f *fakeBackendAPI) CurrentUser(ctx context.Context, token string) (backend.UserProfile, error) {
	if f.currentUserFn == nil {
		return backend.UserProfile{}, nil
	}
	return f.currentUserFn(ctx, token)
}

func (f *fakeBackendAPI) OptInDinner(ctx context.Context, token string, req backend.OptInRequest) error {
	if f.optInFn == nil {
		return nil
	}
	return f.optInFn(ctx, token, req)
}

// fakeNotifier records activation emails.
type fakeNotifier struct {
	sentTo []string
}

func (f *fakeNotifier) SendSubscriptionActive(_ context.Context, toEmail, _ string, _ time.Time) error {
	f.sentTo = append(f.sentTo, toEmail)
	return nil
}

type testFixture struct {
	store      *fakesessionstore.FakeStore
	api        *fakeBackendAPI
	notifier   *fakeNotifier
	reconciler *subscription.Reconciler
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	store := fakesessionstore.NewFakeStore()
	api := &fakeBackendAPI{}
	notifier := &fakeNotifier{}

	reconciler, err := subscription.NewReconciler(store, api,
		subscription.WithNotifier(notifier),
		subscription.WithNowTime(func() time.Time { return testNow }),
	)
	require.NoError(t, err)

	return &testFixture{store: store, api: api, notifier: notifier, reconciler: reconciler}
}

func (f *testFixture) storeSession(t *testing.T, sess session.Session) {
	t.Helper()
	require.NoError(t, f.store.Put(context.Background(), testSessionID, sess))
	f.store.Puts = nil // only count writes made by the code under test
}

func activeSessionInfo() backend.SessionInfo {
	return backend.SessionInfo{
		Subscription: backend.SubscriptionInfo{
			ID:               "sub_123",
			Status:           "active",
			CurrentPeriodEnd: testNow.Add(30 * 24 * time.Hour).Unix(),
		},
	}
}

func TestAbsorbIncomingTokenURLTokenOverwritesStored(t *testing.T) {
	f := setupTestFixture(t)
	f.storeSession(t, session.Session{AccessToken: testStoredToken, Email: testEmail})

	token, err := f.reconciler.AbsorbIncomingToken(context.Background(), testSessionID, testURLToken)
	require.NoError(t, err)
	require.Equal(t, testURLToken, token)
	require.Equal(t, 1, f.store.PutCount(testSessionID))

	stored, err := f.store.Get(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Equal(t, testURLToken, stored.AccessToken)
	require.Equal(t, testEmail, stored.Email) // rest of the session survives
}

func TestAbsorbIncomingTokenNoURLTokenLeavesStoreUntouched(t *testing.T) {
	f := setupTestFixture(t)
	f.storeSession(t, session.Session{AccessToken: testStoredToken})

	token, err := f.reconciler.AbsorbIncomingToken(context.Background(), testSessionID, "")
	require.NoError(t, err)
	require.Equal(t, testStoredToken, token)
	require.Zero(t, f.store.PutCount(testSessionID))
}

func TestAbsorbIncomingTokenNeitherPresent(t *testing.T) {
	f := setupTestFixture(t)

	token, err := f.reconciler.AbsorbIncomingToken(context.Background(), testSessionID, "")
	require.NoError(t, err)
	require.Empty(t, token)
	require.Zero(t, f.store.PutCount(testSessionID))
}

func TestAbsorbIncomingTokenFreshSessionGetsTTL(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.reconciler.AbsorbIncomingToken(context.Background(), testSessionID, testURLToken)
	require.NoError(t, err)

	stored, err := f.store.Get(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Equal(t, testNow, stored.CreatedAt)
	require.Equal(t, testNow.Add(24*time.Hour), stored.ExpiresAt)
}

func TestQueryPaymentStatusMissingSessionID(t *testing.T) {
	f := setupTestFixture(t)

	outcome := f.reconciler.QueryPaymentStatus(context.Background(), "", testStoredToken)
	require.Equal(t, subscription.StatusError, outcome.Status)
	require.ErrorIs(t, outcome.Err, gwerrors.ErrMissingSession)
	require.Zero(t, f.api.sessionInfoCalls) // fails fast, no network call
}

func TestQueryPaymentStatusActive(t *testing.T) {
	f := setupTestFixture(t)
	f.api.sessionInfoFn = func(_ context.Context, token, checkoutSessionID string) (backend.SessionInfo, error) {
		require.Equal(t, testStoredToken, token)
		require.Equal(t, testCheckoutSessionID, checkoutSessionID)
		return activeSessionInfo(), nil
	}

	outcome := f.reconciler.QueryPaymentStatus(context.Background(), testCheckoutSessionID, testStoredToken)
	require.Equal(t, subscription.StatusActive, outcome.Status)
	require.NotNil(t, outcome.Subscription)
	require.Equal(t, "sub_123", outcome.Subscription.ID)
}

func TestQueryPaymentStatusRejectedTokenNeverReportsActive(t *testing.T) {
	f := setupTestFixture(t)
	f.api.sessionInfoFn = func(context.Context, string, string) (backend.SessionInfo, error) {
		return backend.SessionInfo{}, &backend.APIError{StatusCode: 401, Detail: "Could not validate credentials"}
	}

	outcome := f.reconciler.QueryPaymentStatus(context.Background(), testCheckoutSessionID, "expired-token")
	require.Equal(t, subscription.StatusUnauthorized, outcome.Status)
	require.Nil(t, outcome.Subscription)
}

func TestQueryPaymentStatusIncompletePaymentIsFailed(t *testing.T) {
	f := setupTestFixture(t)
	for _, raw := range []string{"incomplete", "canceled", "past_due", "something_new"} {
		f.api.sessionInfoFn = func(context.Context, string, string) (backend.SessionInfo, error) {
			return backend.SessionInfo{Subscription: backend.SubscriptionInfo{Status: raw}}, nil
		}
		outcome := f.reconciler.QueryPaymentStatus(context.Background(), testCheckoutSessionID, testStoredToken)
		require.Equal(t, subscription.StatusFailed, outcome.Status, "raw status %q", raw)
	}
}

func TestQueryPaymentStatusBackendFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.api.sessionInfoFn = func(context.Context, string, string) (backend.SessionInfo, error) {
		return backend.SessionInfo{}, &backend.APIError{StatusCode: 500, Detail: "boom"}
	}

	outcome := f.reconciler.QueryPaymentStatus(context.Background(), testCheckoutSessionID, testStoredToken)
	require.Equal(t, subscription.StatusError, outcome.Status)
	require.Error(t, outcome.Err)
}

func TestReconcileSuccessHappyPath(t *testing.T) {
	f := setupTestFixture(t)
	f.storeSession(t, session.Session{AccessToken: testStoredToken, Email: testEmail})
	f.api.sessionInfoFn = func(context.Context, string, string) (backend.SessionInfo, error) {
		return activeSessionInfo(), nil
	}

	outcome := f.reconciler.ReconcileSuccess(context.Background(), testSessionID, testURLToken, testCheckoutSessionID)
	require.Equal(t, subscription.StatusActive, outcome.Status)
	require.Equal(t, []string{testEmail}, f.notifier.sentTo)

	stored, err := f.store.Get(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Equal(t, testURLToken, stored.AccessToken)
}

func TestReconcileSuccessUnauthorizedClearsStoredToken(t *testing.T) {
	f := setupTestFixture(t)
	f.storeSession(t, session.Session{AccessToken: "expired-token"})
	f.api.sessionInfoFn = func(context.Context, string, string) (backend.SessionInfo, error) {
		return backend.SessionInfo{}, &backend.APIError{StatusCode: 401}
	}

	outcome := f.reconciler.ReconcileSuccess(context.Background(), testSessionID, "", testCheckoutSessionID)
	require.Equal(t, subscription.StatusUnauthorized, outcome.Status)
	require.Equal(t, []string{testSessionID}, f.store.Clears)

	_, err := f.store.Get(context.Background(), testSessionID)
	require.ErrorIs(t, err, session.ErrNotFound)
	require.Empty(t, f.notifier.sentTo)
}

func TestReconcileSuccessIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	f.storeSession(t, session.Session{AccessToken: testStoredToken})
	f.api.sessionInfoFn = func(context.Context, string, string) (backend.SessionInfo, error) {
		return activeSessionInfo(), nil
	}

	first := f.reconciler.ReconcileSuccess(context.Background(), testSessionID, "", testCheckoutSessionID)
	second := f.reconciler.ReconcileSuccess(context.Background(), testSessionID, "", testCheckoutSessionID)
	require.Equal(t, first.Status, second.Status)
	require.Equal(t, 2, f.api.sessionInfoCalls) // a reload repeats the lookup
	require.Zero(t, f.store.PutCount(testSessionID))
}

func TestReconcileSuccessMissingSessionIDSkipsLookup(t *testing.T) {
	f := setupTestFixture(t)

	outcome := f.reconciler.ReconcileSuccess(context.Background(), testSessionID, "", "")
	require.Equal(t, subscription.StatusError, outcome.Status)
	require.ErrorIs(t, outcome.Err, gwerrors.ErrMissingSession)
	require.Zero(t, f.api.sessionInfoCalls)
}

func TestInitiateCheckoutUnknownPlan(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.reconciler.InitiateCheckout(context.Background(), "lifetime", testStoredToken)
	require.ErrorIs(t, err, gwerrors.ErrUnknownPlan)
}

func TestInitiateCheckoutPrefersCheckoutURL(t *testing.T) {
	f := setupTestFixture(t)
	f.api.checkoutFn = func(_ context.Context, _ string, params backend.CheckoutParams) (backend.CheckoutSession, error) {
		require.NotEmpty(t, params.PriceID)
		return backend.CheckoutSession{CheckoutURL: "https://pay.example/a", SessionURL: "https://pay.example/b"}, nil
	}

	url, err := f.reconciler.InitiateCheckout(context.Background(), "1m", testStoredToken)
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/a", url)
}

func TestInitiateCheckoutFallsBackToSessionURL(t *testing.T) {
	f := setupTestFixture(t)
	f.api.checkoutFn = func(context.Context, string, backend.CheckoutParams) (backend.CheckoutSession, error) {
		return backend.CheckoutSession{SessionURL: "https://pay.example/b"}, nil
	}

	url, err := f.reconciler.InitiateCheckout(context.Background(), "3m", testStoredToken)
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/b", url)
}

func TestInitiateCheckoutPassesRedirectURLs(t *testing.T) {
	store := fakesessionstore.NewFakeStore()
	api := &fakeBackendAPI{}
	reconciler, err := subscription.NewReconciler(store, api,
		subscription.WithRedirectBaseURL("https://tablemate.example.com/"),
	)
	require.NoError(t, err)

	var got backend.CheckoutParams
	api.checkoutFn = func(_ context.Context, _ string, params backend.CheckoutParams) (backend.CheckoutSession, error) {
		got = params
		return backend.CheckoutSession{CheckoutURL: "https://pay.example/cs_1"}, nil
	}

	_, err = reconciler.InitiateCheckout(context.Background(), "1m", testStoredToken)
	require.NoError(t, err)
	require.Equal(t, "https://tablemate.example.com/subscription/success?session_id={CHECKOUT_SESSION_ID}", got.SuccessURL)
	require.Equal(t, "https://tablemate.example.com/subscription/cancel", got.CancelURL)
}

func TestInitiateCheckoutNoURLInResponse(t *testing.T) {
	f := setupTestFixture(t)
	f.api.checkoutFn = func(context.Context, string, backend.CheckoutParams) (backend.CheckoutSession, error) {
		return backend.CheckoutSession{}, nil
	}

	_, err := f.reconciler.InitiateCheckout(context.Background(), "12m", testStoredToken)
	require.ErrorIs(t, err, gwerrors.ErrNoCheckoutURL)
}

func TestBookDinnerRequiresActiveSubscription(t *testing.T) {
	f := setupTestFixture(t)
	f.api.currentUserFn = func(context.Context, string) (backend.UserProfile, error) {
		return backend.UserProfile{Email: testEmail, SubscriptionStatus: "incomplete"}, nil
	}
	optInCalled := false
	f.api.optInFn = func(context.Context, string, backend.OptInRequest) error {
		optInCalled = true
		return nil
	}

	err := f.reconciler.BookDinner(context.Background(), testStoredToken, backend.OptInRequest{DinnerID: "dinner-1"})
	require.ErrorIs(t, err, gwerrors.ErrUnauthorized)
	require.False(t, optInCalled)
}

func TestBookDinnerSubscribedUserOptsIn(t *testing.T) {
	f := setupTestFixture(t)
	f.api.currentUserFn = func(context.Context, string) (backend.UserProfile, error) {
		return backend.UserProfile{Email: testEmail, SubscriptionStatus: "active"}, nil
	}
	var got backend.OptInRequest
	f.api.optInFn = func(_ context.Context, _ string, req backend.OptInRequest) error {
		got = req
		return nil
	}

	req := backend.OptInRequest{DinnerID: "dinner-1", BudgetCategory: "medium", DietaryCategory: "vegetarian"}
	require.NoError(t, f.reconciler.BookDinner(context.Background(), testStoredToken, req))
	require.Equal(t, req, got)
}
