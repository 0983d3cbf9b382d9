package collab

import (
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a testify mock standing in for a Fetcher, in the style of
// the teacher's own Datastore/Dispatcher mocks.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(rawURL string) (int, []byte, error) {
	args := m.Called(rawURL)
	return args.Int(0), args.Get(1).([]byte), args.Error(2)
}

func newMockRobotsOracle(fetcher *mockFetcher) *RobotsOracle {
	return NewRobotsOracle(fetcher)
}
