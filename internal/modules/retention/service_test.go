package retention

import (
	"context"
	"strings"
	"testing"
	"time"

	"beautybook/internal/domain"
	"beautybook/internal/modules/whatsapp"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBeauticianStore struct {
	mock.Mock
}

func (m *MockBeauticianStore) GetByID(ctx context.Context, id int64) (*domain.Beautician, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Beautician), args.Error(1)
}

type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockPreferencesStore struct {
	mock.Mock
}

func (m *MockPreferencesStore) GetByCustomerID(ctx context.Context, customerID int64) (*domain.CustomerPreferences, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerPreferences), args.Error(1)
}

func (m *MockPreferencesStore) Create(ctx context.Context, p *domain.CustomerPreferences) error {
	args := m.Called(ctx, p)
	if p != nil {
		p.ID = 1 // simulate DB insert
	}
	return args.Error(0)
}

type MockOfferStore struct {
	mock.Mock
}

func (m *MockOfferStore) Create(ctx context.Context, o *domain.Offer) error {
	args := m.Called(ctx, o)
	if o != nil {
		o.ID = 42 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockOfferStore) TransitionStatus(ctx context.Context, id int64, from, to domain.OfferStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOfferStore) GetByToken(ctx context.Context, token string) (*domain.Offer, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferStore) GetByCustomerID(ctx context.Context, customerID int64) ([]domain.Offer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Offer), args.Error(1)
}

type MockMessageLog struct {
	mock.Mock
}

func (m *MockMessageLog) Create(ctx context.Context, w *domain.WhatsappMessage) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendMessage(ctx context.Context, msg whatsapp.Message) whatsapp.Result {
	args := m.Called(ctx, msg)
	return args.Get(0).(whatsapp.Result)
}

type serviceMocks struct {
	bookings    *MockBookingStore
	users       *MockUserStore
	beauticians *MockBeauticianStore
	catalog     *MockCatalogStore
	prefs       *MockPreferencesStore
	offers      *MockOfferStore
	msgs        *MockMessageLog
	dispatcher  *MockDispatcher
}

func newServiceMocks() *serviceMocks {
	return &serviceMocks{
		bookings:    new(MockBookingStore),
		users:       new(MockUserStore),
		beauticians: new(MockBeauticianStore),
		catalog:     new(MockCatalogStore),
		prefs:       new(MockPreferencesStore),
		offers:      new(MockOfferStore),
		msgs:        new(MockMessageLog),
		dispatcher:  new(MockDispatcher),
	}
}

func newTestService(m *serviceMocks, now time.Time) *Service {
	analyzer := NewAnalyzer(m.bookings, true)
	rec := NewRecommender(analyzer, m.users, 14, 28, 7, zerolog.Nop())
	rec.now = func() time.Time { return now }

	s := NewService(
		analyzer, rec,
		m.users, m.beauticians, m.catalog, m.prefs, m.offers, m.msgs, m.dispatcher,
		ServiceConfig{
			OfferTTL:    7 * 24 * time.Hour,
			SendPacing:  0, // no pacing in tests
			LinkBaseURL: "https://bb.test",
		},
		zerolog.Nop(),
	)
	s.now = func() time.Time { return now }
	return s
}

func optedInPrefs(customerID int64) *domain.CustomerPreferences {
	return &domain.CustomerPreferences{
		ID:             customerID,
		CustomerID:     customerID,
		WhatsappOptIn:  true,
		WhatsappNumber: "+77010000001",
		ReceiveOffers:  true,
	}
}

// setupDueNowPattern makes customer customerID due for a manicure: bookings
// on day 0 and day 21, evaluated at day 40 (2 days before the predicted
// date) for a high-urgency 15% offer.
func (m *serviceMocks) setupDueNowPattern(customerID int64) {
	m.bookings.On("GetByCustomerID", mock.Anything, customerID, true).Return([]domain.Booking{
		booking(5, 10, "manicure", day(0), 5000),
		booking(5, 10, "manicure", day(21), 5000),
	}, nil)
}

func (m *serviceMocks) setupEntities(customerID int64) {
	m.users.On("GetByID", mock.Anything, customerID).Return(&domain.User{ID: customerID, FirstName: "Aigerim", Role: domain.RoleCustomer}, nil)
	m.users.On("GetByID", mock.Anything, int64(77)).Return(&domain.User{ID: 77, FirstName: "Dana", Role: domain.RoleBeautician}, nil)
	m.beauticians.On("GetByID", mock.Anything, int64(5)).Return(&domain.Beautician{ID: 5, UserID: 77}, nil)
	m.catalog.On("GetByID", mock.Anything, int64(10)).Return(&domain.Service{ID: 10, Name: "manicure", Price: 5000}, nil)
}

func TestGenerateAndSendOffer_OptedOut(t *testing.T) {
	m := newServiceMocks()
	prefs := optedInPrefs(1)
	prefs.WhatsappOptIn = false
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(prefs, nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Customer opted out of offers", result.Message)
	m.dispatcher.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
	m.msgs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.offers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerateAndSendOffer_OffersToggleOff(t *testing.T) {
	m := newServiceMocks()
	prefs := optedInPrefs(1)
	prefs.ReceiveOffers = false
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(prefs, nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Customer opted out of offers", result.Message)
}

func TestGenerateAndSendOffer_NoWhatsappNumber(t *testing.T) {
	m := newServiceMocks()
	prefs := optedInPrefs(1)
	prefs.WhatsappNumber = ""
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(prefs, nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Customer has no WhatsApp number", result.Message)
	m.dispatcher.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestGenerateAndSendOffer_LazilyCreatesPreferences(t *testing.T) {
	m := newServiceMocks()
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(nil, nil)
	m.prefs.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	// defaults opt in but carry no contact number
	assert.False(t, result.Success)
	assert.Equal(t, "Customer has no WhatsApp number", result.Message)
	m.prefs.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerateAndSendOffer_NoRecommendations(t *testing.T) {
	m := newServiceMocks()
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(optedInPrefs(1), nil)
	m.bookings.On("GetByCustomerID", mock.Anything, int64(1), true).Return([]domain.Booking{}, nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "No suitable offers found for customer", result.Message)
}

func TestGenerateAndSendOffer_MissingBeautician(t *testing.T) {
	m := newServiceMocks()
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(optedInPrefs(1), nil)
	m.setupDueNowPattern(1)
	m.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, FirstName: "Aigerim"}, nil)
	m.beauticians.On("GetByID", mock.Anything, int64(5)).Return(nil, nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Missing customer or beautician data", result.Message)
	m.offers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerateAndSendOffer_ServiceNotFound(t *testing.T) {
	m := newServiceMocks()
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(optedInPrefs(1), nil)
	m.setupDueNowPattern(1)
	m.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, FirstName: "Aigerim"}, nil)
	m.users.On("GetByID", mock.Anything, int64(77)).Return(&domain.User{ID: 77, FirstName: "Dana"}, nil)
	m.beauticians.On("GetByID", mock.Anything, int64(5)).Return(&domain.Beautician{ID: 5, UserID: 77}, nil)
	m.catalog.On("GetByID", mock.Anything, int64(10)).Return(nil, nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Service not found", result.Message)
}

func TestGenerateAndSendOffer_Success(t *testing.T) {
	m := newServiceMocks()
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(optedInPrefs(1), nil)
	m.setupDueNowPattern(1)
	m.setupEntities(1)

	var created *domain.Offer
	m.offers.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Offer) bool {
		created = o
		return o.Status == domain.OfferPending
	})).Return(nil)
	m.offers.On("TransitionStatus", mock.Anything, int64(42), domain.OfferPending, domain.OfferSent).Return(true, nil)
	m.dispatcher.On("SendMessage", mock.Anything, mock.Anything).Return(whatsapp.Result{
		Success: true, Provider: "twilio", MessageID: "SM123",
	})
	m.msgs.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(42), result.OfferID)

	require.NotNil(t, created)
	assert.Equal(t, 15, created.DiscountPercent)
	assert.Equal(t, float64(5000), created.OriginalPrice)
	assert.Equal(t, float64(4250), created.DiscountedPrice)
	assert.LessOrEqual(t, created.DiscountedPrice, created.OriginalPrice)
	assert.Equal(t, domain.OfferIntervalReminder, created.OfferType)
	assert.Equal(t, day(40).Add(7*24*time.Hour), created.ExpiresAt)
	assert.NotEmpty(t, created.LinkToken)

	for _, want := range []string{"Aigerim", "Dana", "manicure", "15% off", "4250", "https://bb.test/offers/" + created.LinkToken} {
		assert.True(t, strings.Contains(created.Message, want), "message should contain %q: %s", want, created.Message)
	}

	m.msgs.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(w *domain.WhatsappMessage) bool {
		return w.Status == "sent" && w.Provider == "twilio" && w.ProviderMessageID == "SM123" && *w.OfferID == 42
	}))
}

func TestGenerateAndSendOffer_DispatchFailureKeepsOfferPending(t *testing.T) {
	m := newServiceMocks()
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(optedInPrefs(1), nil)
	m.setupDueNowPattern(1)
	m.setupEntities(1)

	m.offers.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.dispatcher.On("SendMessage", mock.Anything, mock.Anything).Return(whatsapp.Result{
		Success: false, Provider: "meta", Error: "provider unreachable",
	})
	m.msgs.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := newTestService(m, day(40))
	result, err := s.GenerateAndSendOffer(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "provider unreachable", result.Message)
	assert.Equal(t, int64(42), result.OfferID)

	m.offers.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.msgs.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(w *domain.WhatsappMessage) bool {
		return w.Status == "failed" && w.ErrorDetail == "provider unreachable"
	}))
}

func TestGenerateAndSendOffer_InfrastructureErrorPropagates(t *testing.T) {
	m := newServiceMocks()
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(nil, assert.AnError)

	s := newTestService(m, day(40))
	_, err := s.GenerateAndSendOffer(context.Background(), 1)

	assert.ErrorIs(t, err, assert.AnError)
}

func TestProcessAutomatedOffers_CountsSentAndFailed(t *testing.T) {
	m := newServiceMocks()
	m.users.On("GetCustomers", mock.Anything).Return([]domain.User{
		{ID: 1, Role: domain.RoleCustomer},
		{ID: 2, Role: domain.RoleCustomer},
	}, nil)

	m.setupDueNowPattern(1)
	m.setupDueNowPattern(2)

	// customer 1 sends, customer 2 is opted out
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(optedInPrefs(1), nil)
	optedOut := optedInPrefs(2)
	optedOut.WhatsappOptIn = false
	m.prefs.On("GetByCustomerID", mock.Anything, int64(2)).Return(optedOut, nil)

	m.setupEntities(1)
	m.offers.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.offers.On("TransitionStatus", mock.Anything, int64(42), domain.OfferPending, domain.OfferSent).Return(true, nil)
	m.dispatcher.On("SendMessage", mock.Anything, mock.Anything).Return(whatsapp.Result{Success: true, Provider: "twilio", MessageID: "SM1"})
	m.msgs.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := newTestService(m, day(40))
	result, err := s.ProcessAutomatedOffers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
}

func TestProcessAutomatedOffers_SwallowsPerCustomerErrors(t *testing.T) {
	m := newServiceMocks()
	m.users.On("GetCustomers", mock.Anything).Return([]domain.User{
		{ID: 1, Role: domain.RoleCustomer},
		{ID: 2, Role: domain.RoleCustomer},
	}, nil)

	m.setupDueNowPattern(1)
	m.setupDueNowPattern(2)

	// customer 1 hits an infrastructure error; the batch keeps going
	m.prefs.On("GetByCustomerID", mock.Anything, int64(1)).Return(nil, assert.AnError)
	m.prefs.On("GetByCustomerID", mock.Anything, int64(2)).Return(optedInPrefs(2), nil)

	m.users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, FirstName: "Madina"}, nil)
	m.users.On("GetByID", mock.Anything, int64(77)).Return(&domain.User{ID: 77, FirstName: "Dana"}, nil)
	m.beauticians.On("GetByID", mock.Anything, int64(5)).Return(&domain.Beautician{ID: 5, UserID: 77}, nil)
	m.catalog.On("GetByID", mock.Anything, int64(10)).Return(&domain.Service{ID: 10, Name: "manicure", Price: 5000}, nil)

	m.offers.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.offers.On("TransitionStatus", mock.Anything, int64(42), domain.OfferPending, domain.OfferSent).Return(true, nil)
	m.dispatcher.On("SendMessage", mock.Anything, mock.Anything).Return(whatsapp.Result{Success: true, Provider: "twilio", MessageID: "SM2"})
	m.msgs.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := newTestService(m, day(40))
	result, err := s.ProcessAutomatedOffers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
}

func TestMarkOfferClicked(t *testing.T) {
	m := newServiceMocks()
	m.offers.On("GetByToken", mock.Anything, "tok").Return(&domain.Offer{ID: 42, Status: domain.OfferSent, LinkToken: "tok"}, nil)
	m.offers.On("TransitionStatus", mock.Anything, int64(42), domain.OfferSent, domain.OfferClicked).Return(true, nil)

	s := newTestService(m, day(40))
	offer, err := s.MarkOfferClicked(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, domain.OfferClicked, offer.Status)
}

func TestMarkOfferClicked_NoRegression(t *testing.T) {
	m := newServiceMocks()
	m.offers.On("GetByToken", mock.Anything, "tok").Return(&domain.Offer{ID: 42, Status: domain.OfferBooked, LinkToken: "tok"}, nil)

	s := newTestService(m, day(40))
	_, err := s.MarkOfferClicked(context.Background(), "tok")

	assert.ErrorIs(t, err, ErrInvalidTransition)
	m.offers.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkOfferClicked_NotFound(t *testing.T) {
	m := newServiceMocks()
	m.offers.On("GetByToken", mock.Anything, "missing").Return(nil, nil)

	s := newTestService(m, day(40))
	_, err := s.MarkOfferClicked(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrOfferNotFound)
}
