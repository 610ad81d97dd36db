package testing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/testcontainers/testcontainers-go"
	tces "github.com/testcontainers/testcontainers-go/modules/elasticsearch"
)

const esImage = "docker.elastic.co/elasticsearch/elasticsearch:8.19.0"

// ESContainer represents a running Elasticsearch test container
type ESContainer struct {
	Container testcontainers.Container
	Address   string
	Username  string
	Password  string
	CACert    []byte
	Client    *elasticsearch.Client
}

// NewESContainer starts a single-node Elasticsearch and returns a client
// already configured with the container's credentials and CA.
func NewESContainer(ctx context.Context, tb testing.TB) *ESContainer {
	tb.Helper()

	esContainer, err := tces.Run(ctx, esImage,
		tces.WithPassword("searchbench"),
		testcontainers.WithEnv(map[string]string{
			"ES_JAVA_OPTS": "-Xms512m -Xmx512m",
		}),
	)
	if err != nil {
		tb.Fatalf("failed to start elasticsearch container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(esContainer); err != nil {
			tb.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	settings := esContainer.Settings
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{settings.Address},
		Username:  "elastic",
		Password:  settings.Password,
		CACert:    settings.CACert,
	})
	if err != nil {
		tb.Fatalf("failed to create elasticsearch client: %v", err)
	}

	return &ESContainer{
		Container: esContainer,
		Address:   settings.Address,
		Username:  "elastic",
		Password:  settings.Password,
		CACert:    settings.CACert,
		Client:    client,
	}
}

// IndexDocs stores docs under their map keys and refreshes the index so
// they are immediately searchable.
func (c *ESContainer) IndexDocs(ctx context.Context, tb testing.TB, index string, docs map[string]any) {
	tb.Helper()

	for id, doc := range docs {
		body, err := json.Marshal(doc)
		if err != nil {
			tb.Fatalf("failed to marshal doc %s: %v", id, err)
		}

		res, err := esapi.IndexRequest{
			Index:      index,
			DocumentID: id,
			Body:       bytes.NewReader(body),
		}.Do(ctx, c.Client)
		if err != nil {
			tb.Fatalf("failed to index doc %s: %v", id, err)
		}
		if res.IsError() {
			msg := res.String()
			_ = res.Body.Close()
			tb.Fatalf("index doc %s: %s", id, msg)
		}
		_ = res.Body.Close()
	}

	res, err := esapi.IndicesRefreshRequest{Index: []string{index}}.Do(ctx, c.Client)
	if err != nil {
		tb.Fatalf("failed to refresh index %s: %v", index, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		tb.Fatalf("refresh index %s: %s", index, res.String())
	}
}
