// Package archive indexes issued deliveries and receipts into OpenSearch so
// evidence teams can search them. Archival is best-effort enrichment; an
// unreachable cluster never fails issuance.
package archive

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/proofpost-systems/proofpost/internal/models"
)

// Config holds OpenSearch connection settings.
type Config struct {
	URL           string
	Username      string
	Password      string
	TLSSkipVerify bool
	IndexPrefix   string
}

// Client wraps the OpenSearch client with our index naming.
type Client struct {
	os          *opensearch.Client
	indexPrefix string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.IndexPrefix == "" {
		cfg.IndexPrefix = "proofpost"
	}

	transport := &http.Transport{}
	if cfg.TLSSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
	}

	return &Client{os: client, indexPrefix: cfg.IndexPrefix}, nil
}

// IndexDelivery archives a delivery snapshot.
func (c *Client) IndexDelivery(ctx context.Context, d *models.Delivery) {
	c.index(ctx, c.indexPrefix+"-deliveries", d.ID, d)
}

// IndexReceipt archives an issued receipt.
func (c *Client) IndexReceipt(ctx context.Context, r *models.Receipt) {
	c.index(ctx, c.indexPrefix+"-receipts", r.ID, r)
}

func (c *Client) index(ctx context.Context, index, id string, doc interface{}) {
	body, err := json.Marshal(doc)
	if err != nil {
		slog.Warn("archive encode failed", slog.String("index", index), slog.String("error", err.Error()))
		return
	}

	req := opensearchapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, c.os)
	if err != nil {
		slog.Warn("archive index failed", slog.String("index", index), slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.IsError() {
		slog.Warn("archive index rejected", slog.String("index", index), slog.String("status", resp.Status()))
	}
}
