package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cartdom "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/session"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Load(ctx context.Context, userID uuid.UUID) (*cartdom.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*cartdom.Cart), args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, userID uuid.UUID, c *cartdom.Cart) error {
	args := m.Called(ctx, userID, c)
	return args.Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Save(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func newTestService(repo *mockRepository, sessions *mockSessionStore) *Service {
	return NewService(repo, sessions, zap.NewNop())
}

func TestService_Add_Guest(t *testing.T) {
	repo := new(mockRepository)
	sessions := new(mockSessionStore)
	svc := newTestService(repo, sessions)

	sess := session.NewSession()
	sessions.On("Save", mock.Anything, sess).Return(nil)

	c, err := svc.Add(context.Background(), sess, 101, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[101].Quantity)

	_, err = svc.Add(context.Background(), sess, 101, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, sess.Cart.Items[101].Quantity)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	sessions.AssertNumberOfCalls(t, "Save", 2)
}

func TestService_Add_InvalidQuantity(t *testing.T) {
	repo := new(mockRepository)
	sessions := new(mockSessionStore)
	svc := newTestService(repo, sessions)

	sess := session.NewSession()
	_, err := svc.Add(context.Background(), sess, 101, 0)
	assert.Error(t, err)
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Update_User(t *testing.T) {
	repo := new(mockRepository)
	sessions := new(mockSessionStore)
	svc := newTestService(repo, sessions)

	userID := uuid.New()
	sess := session.NewSession()
	sess.Authenticate(userID.String())

	stored := cartdom.New()
	require.NoError(t, stored.Add(7, 4))
	repo.On("Load", mock.Anything, userID).Return(stored, nil)
	repo.On("Save", mock.Anything, userID, stored).Return(nil)

	c, err := svc.Update(context.Background(), sess, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Items[7].Quantity)

	// zero quantity removes the position
	c, err = svc.Update(context.Background(), sess, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	repo.AssertExpectations(t)
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Clear(t *testing.T) {
	repo := new(mockRepository)
	sessions := new(mockSessionStore)
	svc := newTestService(repo, sessions)

	sess := session.NewSession()
	require.NoError(t, sess.Cart.Add(1, 1))
	sessions.On("Save", mock.Anything, sess).Return(nil)

	c, err := svc.Clear(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestService_MergeOnLogin(t *testing.T) {
	repo := new(mockRepository)
	sessions := new(mockSessionStore)
	svc := newTestService(repo, sessions)

	userID := uuid.New()
	sess := session.NewSession()
	require.NoError(t, sess.Cart.Add(1, 2))
	require.NoError(t, sess.Cart.Add(2, 1))

	stored := cartdom.New()
	require.NoError(t, stored.Add(1, 3))
	repo.On("Load", mock.Anything, userID).Return(stored, nil)
	repo.On("Save", mock.Anything, userID, stored).Return(nil)
	sessions.On("Save", mock.Anything, sess).Return(nil)

	require.NoError(t, svc.MergeOnLogin(context.Background(), sess, userID))

	assert.Equal(t, 5, stored.Items[1].Quantity)
	assert.Equal(t, 1, stored.Items[2].Quantity)
	assert.Equal(t, 0, sess.Cart.Len(), "guest cart must be emptied after merge")

	// a second call finds an empty guest cart and does nothing
	require.NoError(t, svc.MergeOnLogin(context.Background(), sess, userID))
	repo.AssertNumberOfCalls(t, "Load", 1)
	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestService_Get_Guest(t *testing.T) {
	repo := new(mockRepository)
	sessions := new(mockSessionStore)
	svc := newTestService(repo, sessions)

	sess := session.NewSession()
	require.NoError(t, sess.Cart.Add(9, 9))

	c, err := svc.Get(context.Background(), sess)
	require.NoError(t, err)
	assert.Same(t, sess.Cart, c)
}
