package threatlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// DefaultIndex is the OpenSearch index records are written to.
const DefaultIndex = "waf-threats"

// OpenSearchSink indexes records for search and dashboards. The incident id
// is the document id, so a retried write never duplicates an incident.
type OpenSearchSink struct {
	transport opensearchapi.Transport
	index     string
}

// NewOpenSearchSink returns a sink writing to index through transport,
// usually an *opensearch.Client.
func NewOpenSearchSink(transport opensearchapi.Transport, index string) *OpenSearchSink {
	if index == "" {
		index = DefaultIndex
	}
	return &OpenSearchSink{transport: transport, index: index}
}

// NewOpenSearchClient creates a client and verifies the cluster answers.
func NewOpenSearchClient(ctx context.Context, addresses []string, username, password string) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("threatlog: opensearch client: %w", err)
	}

	if err := PingOpenSearch(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// PingOpenSearch checks that the cluster behind transport answers.
func PingOpenSearch(ctx context.Context, transport opensearchapi.Transport) error {
	resp, err := opensearchapi.InfoRequest{}.Do(ctx, transport)
	if err != nil {
		return fmt.Errorf("threatlog: opensearch info: %w", err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("threatlog: opensearch info: %s", resp.Status())
	}
	return nil
}

// Write indexes r.
func (s *OpenSearchSink) Write(ctx context.Context, r Record) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("threatlog: encode record: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: r.IncidentID,
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, s.transport)
	if err != nil {
		return fmt.Errorf("threatlog: opensearch index: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.IsError() {
		return fmt.Errorf("threatlog: opensearch index: %s", resp.Status())
	}
	return nil
}
