package collab

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

func TestRobotsOracleDeniesPathDisallowedInRobotsTxt(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", "http://example.com/robots.txt").
		Return(200, []byte("User-agent: *\nDisallow: /private\n"), nil)

	oracle := newMockRobotsOracle(fetcher)

	if oracle.CanFetch("http://example.com/private/page", "TestBot") {
		t.Error("expected /private to be disallowed")
	}
	if !oracle.CanFetch("http://example.com/public/page", "TestBot") {
		t.Error("expected /public to be allowed")
	}
	fetcher.AssertExpectations(t)
}

func TestRobotsOracleDefaultsToAllowedOnFetchFailure(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", "http://example.com/robots.txt").
		Return(0, []byte(nil), assertionError("connection refused"))

	oracle := newMockRobotsOracle(fetcher)

	if !oracle.CanFetch("http://example.com/anything", "TestBot") {
		t.Error("expected a robots.txt fetch failure to default to allowed")
	}
}

func TestRobotsOracleCachesGroupPerHost(t *testing.T) {
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything).
		Return(200, []byte("User-agent: *\nDisallow: /x\n"), nil).Once()

	oracle := newMockRobotsOracle(fetcher)
	oracle.CanFetch("http://example.com/a", "TestBot")
	oracle.CanFetch("http://example.com/b", "TestBot")

	fetcher.AssertExpectations(t)
}

type assertionError string

func (e assertionError) Error() string { return string(e) }
