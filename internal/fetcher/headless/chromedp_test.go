package headless

import (
	"context"
	"net/http"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/require"

	"github.com/praclabs/workinator/internal/offers"
)

func TestResponseMetaCapturesDocumentOnly(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()

	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeImage,
		Response: &network.Response{Status: 500, URL: "https://cdn.example/logo.png"},
	})
	status, url := meta.snapshotWithFallbacks("https://req.example", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "https://req.example", url)

	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 403, URL: "https://www.pracuj.pl/praca"},
	})
	status, url = meta.snapshotWithFallbacks("https://req.example", "")
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "https://www.pracuj.pl/praca", url)
}

func TestSnapshotFallsBackToFinalURL(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	status, url := meta.snapshotWithFallbacks("https://req.example", "https://final.example")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "https://final.example", url)
}

func TestClassifyRendered(t *testing.T) {
	t.Parallel()

	require.Nil(t, classifyRendered("u", http.StatusOK, "<html>offers</html>"))

	fe := classifyRendered("u", http.StatusNotFound, "")
	require.NotNil(t, fe)
	require.Equal(t, offers.FetchNotFound, fe.Kind)

	fe = classifyRendered("u", http.StatusForbidden, "")
	require.NotNil(t, fe)
	require.Equal(t, offers.FetchBlocked, fe.Kind)

	fe = classifyRendered("u", http.StatusOK, `<div class="cf-chl-widget"></div>`)
	require.NotNil(t, fe)
	require.Equal(t, offers.FetchBlocked, fe.Kind)
}

func TestNoopFetchErrors(t *testing.T) {
	t.Parallel()

	_, err := NewNoop().Fetch(context.Background(), "https://example.com")
	require.Error(t, err)
}
