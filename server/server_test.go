package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/ingest"
	"github.com/becomeliminal/memory-vault/memory"
	"github.com/becomeliminal/memory-vault/memory/embedder/mock"
	"github.com/becomeliminal/memory-vault/memory/store/chromem"
	"github.com/becomeliminal/memory-vault/rag"
)

type fakeGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, maxTokens int) ([]string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, maxTokens int) ([]string, error) {
	return f.GenerateFunc(ctx, prompt, maxTokens)
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	return "grandma singing", nil
}

type testEnv struct {
	server *httptest.Server
	vault  *memory.Vault
	media  *ingest.MediaDir
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	index, err := chromem.NewInMemory("")
	require.NoError(t, err)
	vault := memory.NewVault(index, mock.New(32))

	media, err := ingest.NewMediaDir(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	ingestor := ingest.NewIngestor(
		ingest.NewNormalizer(nil, fakeTranscriber{}, 0),
		media,
		ingest.WithScratchDir(t.TempDir()),
	)
	gen := &fakeGenerator{GenerateFunc: func(ctx context.Context, prompt string, maxTokens int) ([]string, error) {
		return []string{"Answer: it was lovely"}, nil
	}}
	responder := rag.NewResponder(vault, gen)

	s := New(ctx, Config{TopK: 5, ModelTimeout: time.Minute}, vault, ingestor, responder, media)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, vault: vault, media: media}
}

type part struct {
	filename    string
	data        string
	sourceType  string
	description string
}

func (e *testEnv) upload(t *testing.T, parts ...part) (*http.Response, uploadResponse) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile("files", p.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(p.data))
		require.NoError(t, err)
	}
	for _, p := range parts {
		require.NoError(t, mw.WriteField("source_types", p.sourceType))
		require.NoError(t, mw.WriteField("descriptions", p.description))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(e.server.URL+"/api/memories", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out uploadResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (e *testEnv) query(t *testing.T, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(e.server.URL+"/api/query", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, healthResponse{Status: "ok", Memories: 0}, out)
}

func TestUpload_PartialFailure(t *testing.T) {
	env := newTestEnv(t)

	resp, out := env.upload(t,
		part{filename: "diary.txt", data: "We hiked in 2019.", description: "trip"},
		part{filename: "movie.mkv", data: "???"},
		part{filename: "song.mp3", data: "ID3", sourceType: "audio"},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 2, out.Ingested)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "movie.mkv", out.Errors[0].Filename)

	require.Len(t, out.Memories, 2)
	assert.Equal(t, "Description: trip\n\nWe hiked in 2019.", out.Memories[0].Content)
	assert.Equal(t, "Audio transcription: grandma singing", out.Memories[1].Content)
	assert.NotEmpty(t, out.Memories[1].FilePath)

	count, err := env.vault.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpload_NoFiles(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.upload(t)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuery(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.query(t, `{"query":"what happened?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty core.Answer
	require.NoError(t, json.Unmarshal(data, &empty))
	assert.Equal(t, rag.FallbackResponse, empty.Response)
	assert.JSONEq(t, `{"response":"`+rag.FallbackResponse+`","images":[],"audio":[]}`, string(data))

	_, out := env.upload(t, part{filename: "song.mp3", data: "ID3"})
	require.Equal(t, 1, out.Ingested)

	resp, data = env.query(t, `{"query":"play the recording","k":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ans core.Answer
	require.NoError(t, json.Unmarshal(data, &ans))
	assert.Equal(t, "As your memory archivist, I recall: it was lovely", ans.Response)
	require.Len(t, ans.Audio, 1)
	assert.Equal(t, "song.mp3", ans.Audio[0].Filename)
}

func TestQuery_Empty(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.query(t, `{"query":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "query must not be empty")
}

func TestMedia(t *testing.T) {
	env := newTestEnv(t)

	rel, err := env.media.Save("photo.jpg", []byte("jpeg bytes"))
	require.NoError(t, err)

	resp, err := http.Get(env.server.URL + "/media/" + rel)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jpeg bytes", string(data))

	resp, err = http.Get(env.server.URL + "/media/absent.jpg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(env.server.URL + "/media/..")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)

	_, err = os.Stat(filepath.Join(env.media.Root(), rel))
	assert.NoError(t, err)
}

func TestWebSocket(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.vault.AddBatch(context.Background(), []core.Record{{
		Content:    "We met in Rome",
		Filename:   "rome.txt",
		SourceType: core.SourceText,
		UploadTime: time.Now(),
	}}))

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(queryRequest{Query: "where did we meet?"}))
	var ans core.Answer
	require.NoError(t, conn.ReadJSON(&ans))
	assert.Equal(t, "As your memory archivist, I recall: it was lovely", ans.Response)

	require.NoError(t, conn.WriteJSON(queryRequest{Query: ""}))
	var errResp errorResponse
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "query must not be empty", errResp.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errResp = errorResponse{}
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, "invalid message", errResp.Error)
}
