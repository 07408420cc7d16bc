package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/folio/pkg/answer"
	"github.com/papercomputeco/folio/pkg/index"
	"github.com/papercomputeco/folio/pkg/search"
	"github.com/papercomputeco/folio/pkg/store/inmemory"
	testutils "github.com/papercomputeco/folio/pkg/utils/test"
)

var _ = Describe("Server", func() {
	var (
		server    *Server
		vault     *testutils.MockCorpus
		db        *inmemory.Store
		embedder  *testutils.MockEmbedder
		completer *testutils.MockCompleter
	)

	BeforeEach(func() {
		vault = testutils.NewMockCorpus()
		db = inmemory.NewStore()
		embedder = testutils.NewMockEmbedder()
		completer = &testutils.MockCompleter{Response: "a grounded answer"}
		logger := zap.NewNop()

		indexer := index.NewIndexer(index.Config{
			Provider: vault,
			Store:    db,
			Embedder: embedder,
			Logger:   logger,
		})
		retriever := search.NewRetriever(search.Config{
			Store:    db,
			Embedder: embedder,
			Logger:   logger,
		})
		assembler := answer.NewAssembler(answer.Config{
			Completer: completer,
			Logger:    logger,
		})

		server = NewServer(
			Config{ListenAddr: ":0"},
			indexer,
			retriever,
			assembler,
			index.Options{},
			ParamDefaults{MatchThreshold: 0.5, MatchCount: 10},
			logger,
		)
	})

	request := func(method, target string, body any) *http.Response {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(payload)
		}

		req := httptest.NewRequest(method, target, reader)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp := request(http.MethodGet, "/ping", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body string
			decode(resp, &body)
			Expect(body).To(Equal("pong"))
		})
	})

	Describe("POST /sync", func() {
		It("runs a pass and reports outcome tallies", func() {
			vault.Documents["a.md"] = "some content"

			resp := request(http.MethodPost, "/sync", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body SyncResponse
			decode(resp, &body)
			Expect(body.Indexed).To(Equal(1))
			Expect(body.Summary).To(ContainSubstring("1 indexed"))
		})
	})

	Describe("POST /search", func() {
		It("rejects a missing query", func() {
			resp := request(http.MethodPost, "/search", SearchRequest{})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns ranked matches", func() {
			vault.Documents["a.md"] = "a section about gardening"
			request(http.MethodPost, "/sync", nil)

			resp := request(http.MethodPost, "/search", SearchRequest{Query: "gardening"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body SearchResponse
			decode(resp, &body)
			Expect(body.Results).To(HaveLen(1))
			Expect(body.Results[0].DocumentPath).To(Equal("a.md"))
		})

		It("returns an empty result set when the index is empty", func() {
			resp := request(http.MethodPost, "/search", SearchRequest{Query: "anything"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body SearchResponse
			decode(resp, &body)
			Expect(body.Results).To(BeEmpty())
		})
	})

	Describe("POST /ask", func() {
		It("returns a grounded answer with its sources", func() {
			vault.Documents["a.md"] = "a section about gardening"
			request(http.MethodPost, "/sync", nil)

			resp := request(http.MethodPost, "/ask", SearchRequest{Query: "gardening"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body AskResponse
			decode(resp, &body)
			Expect(body.Answer).To(Equal("a grounded answer"))
			Expect(body.Results).To(HaveLen(1))
		})
	})
})
