package relayer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeedIDs(t *testing.T) []FeedID {
	t.Helper()
	return DefaultFeedIDs()
}

func TestLatestUpdates(t *testing.T) {
	var gotQuery []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/updates/price/latest", r.URL.Path)
		gotQuery = r.URL.Query()["ids[]"]

		w.Header().Set("Content-Type", "application/json")
		// one blob with the 0x marker, one without
		_, _ = w.Write([]byte(`{"binary":{"encoding":"hex","data":["0xdeadbeef","cafe01"]}}`))
	}))
	defer srv.Close()

	client := NewAttestationClient(&AttestationEndpointConfig{BaseURL: srv.URL})

	updates, err := client.LatestUpdates(context.Background(), testFeedIDs(t))
	require.NoError(t, err)

	// exactly one decoded blob per element reported by the service
	require.Len(t, updates, 2)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, updates[0])
	assert.Equal(t, []byte{0xca, 0xfe, 0x01}, updates[1])

	// every requested feed ID travels as a repeated ids[] param
	require.Len(t, gotQuery, len(testFeedIDs(t)))
	for i, id := range testFeedIDs(t) {
		assert.Equal(t, id.Hex(), gotQuery[i])
	}
}

func TestLatestUpdatesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "service error status",
			status:  http.StatusBadGateway,
			body:    `upstream unavailable`,
			wantMsg: "attestation service error",
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{"binary":`,
			wantMsg: "failed to unmarshal",
		},
		{
			name:    "missing binary data array",
			status:  http.StatusOK,
			body:    `{"parsed":[{"id":"abcd"}]}`,
			wantMsg: "unexpected response shape",
		},
		{
			name:    "blob is not hex",
			status:  http.StatusOK,
			body:    `{"binary":{"encoding":"hex","data":["0xzzzz"]}}`,
			wantMsg: "failed to decode binary data array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewAttestationClient(&AttestationEndpointConfig{BaseURL: srv.URL})

			updates, err := client.LatestUpdates(context.Background(), testFeedIDs(t))
			require.Error(t, err)
			require.Nil(t, updates)

			var fetchErr *FetchError
			assert.True(t, errors.As(err, &fetchErr), "error must be a FetchError: %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLatestUpdatesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := NewAttestationClient(&AttestationEndpointConfig{BaseURL: srv.URL})

	_, err := client.LatestUpdates(context.Background(), testFeedIDs(t))
	require.Error(t, err)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestDecodeUpdateDataNormalization(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  [][]byte
	}{
		{
			name:  "already prefixed",
			input: []string{"0x01ff"},
			want:  [][]byte{{0x01, 0xff}},
		},
		{
			name:  "bare hex gets the marker",
			input: []string{"01ff"},
			want:  [][]byte{{0x01, 0xff}},
		},
		{
			name:  "mixed inputs",
			input: []string{"0xaa", "bb", "0xcc"},
			want:  [][]byte{{0xaa}, {0xbb}, {0xcc}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeUpdateData(tt.input)
			if err != nil {
				t.Fatalf("decodeUpdateData(%v) returned error: %v", tt.input, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}
