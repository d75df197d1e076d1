package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// ListScans returns the scans visible to the caller, newest first.
func (c *Client) ListScans(ctx context.Context, limit, offset int) ([]model.ScanListItem, error) {
	path := "/api/scans/"
	if limit > 0 || offset > 0 {
		q := url.Values{}
		if limit > 0 {
			q.Set("limit", strconv.Itoa(limit))
		}
		if offset > 0 {
			q.Set("offset", strconv.Itoa(offset))
		}
		path += "?" + q.Encode()
	}
	var scans []model.ScanListItem
	if err := c.do(ctx, http.MethodGet, path, nil, &scans); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return scans, nil
}

// GetScan fetches a single scan, including its vulnerabilities once
// the scan has completed.
func (c *Client) GetScan(ctx context.Context, id int) (*model.Scan, error) {
	var scan model.Scan
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/scans/%d", id), nil, &scan); err != nil {
		return nil, fmt.Errorf("fetch scan %d: %w", id, err)
	}
	return &scan, nil
}

// CreateScan submits a new web scan target. The scan comes back in
// status Pending; the engine drives it from there.
func (c *Client) CreateScan(ctx context.Context, targetURL string) (*model.Scan, error) {
	payload := map[string]string{"target_url": targetURL}
	var scan model.Scan
	if err := c.do(ctx, http.MethodPost, "/api/scans/", payload, &scan); err != nil {
		return nil, fmt.Errorf("create scan: %w", err)
	}
	return &scan, nil
}

// CreateSASTScan uploads a source archive for static analysis as a
// multipart form and returns the created scan.
func (c *Client) CreateSASTScan(ctx context.Context, filename string, archive io.Reader) (*model.Scan, error) {
	var body io.Reader
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	body = pr

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, archive); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/scans/sast", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, hook := range c.requestHooks {
		hook(req)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	for _, hook := range c.responseHooks {
		hook(req, resp)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, fmt.Errorf("upload sast archive: %w", err)
	}

	var scan model.Scan
	if err := decodeJSON(resp.Body, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// ReportHTML fetches the inline HTML report body for a completed scan.
func (c *Client) ReportHTML(ctx context.Context, id int) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/api/scans/%d/report/html", id), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return "", fmt.Errorf("fetch html report: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read html report: %w", err)
	}
	return string(data), nil
}

// DownloadReportHTML streams the downloadable HTML report into w.
func (c *Client) DownloadReportHTML(ctx context.Context, id int, w io.Writer) error {
	return c.downloadReport(ctx, fmt.Sprintf("/api/scans/%d/report/html/download", id), w)
}

// DownloadReportPDF streams the PDF report into w.
func (c *Client) DownloadReportPDF(ctx context.Context, id int, w io.Writer) error {
	return c.downloadReport(ctx, fmt.Sprintf("/api/scans/%d/report/pdf", id), w)
}

func (c *Client) downloadReport(ctx context.Context, path string, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return fmt.Errorf("download report: %w", err)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
