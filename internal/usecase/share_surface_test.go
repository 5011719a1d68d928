package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"epaper-clip/internal/domain"
	"epaper-clip/internal/mocks"
)

func newTestSurface(t *testing.T, primary, legacy domain.Clipboard) (*ShareSurface, *func()) {
	res := &PublishResult{ShareURL: "https://news.example/clip/42"}
	s := NewShareSurface(res, domain.DefaultShareCaption, primary, legacy)
	var reset func()
	s.afterFunc = func(d time.Duration, f func()) *time.Timer {
		assert.Equal(t, CopyResetDelay, d)
		reset = f
		return time.NewTimer(time.Hour)
	}
	return s, &reset
}

func TestShareSurface_LegacyFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockClipboard(ctrl)
	legacy := mocks.NewMockClipboard(ctrl)

	primary.EXPECT().WriteText(gomock.Any(), "https://news.example/clip/42").Return(errors.New("permission denied"))
	legacy.EXPECT().WriteText(gomock.Any(), "https://news.example/clip/42").Return(nil)

	s, reset := newTestSurface(t, primary, legacy)
	require.NoError(t, s.Copy(context.Background()))
	assert.True(t, s.CopySuccess())

	require.NotNil(t, *reset)
	assert.Equal(t, 2*time.Second, CopyResetDelay)
	(*reset)()
	assert.False(t, s.CopySuccess())
}

func TestShareSurface_PrimaryOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockClipboard(ctrl)
	legacy := mocks.NewMockClipboard(ctrl)

	primary.EXPECT().WriteText(gomock.Any(), gomock.Any()).Return(nil)

	s, _ := newTestSurface(t, primary, legacy)
	require.NoError(t, s.Copy(context.Background()))
	assert.True(t, s.CopySuccess())
}

func TestShareSurface_BothFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockClipboard(ctrl)
	legacy := mocks.NewMockClipboard(ctrl)

	primary.EXPECT().WriteText(gomock.Any(), gomock.Any()).Return(errors.New("no display"))
	legacy.EXPECT().WriteText(gomock.Any(), gomock.Any()).Return(errors.New("not a tty"))

	s, _ := newTestSurface(t, primary, legacy)
	err := s.Copy(context.Background())
	assert.ErrorIs(t, err, domain.ErrClipboardUnavailable)
	assert.ErrorContains(t, err, "not a tty")
	assert.False(t, s.CopySuccess())
}

func TestShareSurface_NoClipboards(t *testing.T) {
	s, _ := newTestSurface(t, nil, nil)
	assert.ErrorIs(t, s.Copy(context.Background()), domain.ErrClipboardUnavailable)
}
