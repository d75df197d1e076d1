package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// ListCWE returns the full CWE knowledge base, ordered by id.
func (c *Client) ListCWE(ctx context.Context) ([]model.CWE, error) {
	var entries []model.CWE
	if err := c.do(ctx, http.MethodGet, "/api/cwe/", nil, &entries); err != nil {
		return nil, fmt.Errorf("list cwe entries: %w", err)
	}
	return entries, nil
}

// GetCWE fetches one CWE record by its canonical id, e.g. "CWE-89".
func (c *Client) GetCWE(ctx context.Context, id string) (*model.CWE, error) {
	var entry model.CWE
	if err := c.do(ctx, http.MethodGet, "/api/cwe/"+url.PathEscape(id), nil, &entry); err != nil {
		return nil, fmt.Errorf("fetch cwe %s: %w", id, err)
	}
	return &entry, nil
}
