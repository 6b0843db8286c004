package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListReports returns one page of moderation reports with pagination metadata.
func (c *Client) ListReports(ctx context.Context, opts ListOptions) ([]Report, *ListMeta, error) {
	data, meta, err := c.do(ctx, http.MethodGet, "/admin/reports", listQuery(opts), nil)
	if err != nil {
		return nil, nil, err
	}
	var reports []Report
	if err = json.Unmarshal(data, &reports); err != nil {
		return nil, nil, fmt.Errorf("admin: parse reports failed: %w", err)
	}
	return reports, meta, nil
}

// GetReport returns a single report by id.
func (c *Client) GetReport(ctx context.Context, id string) (*Report, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/admin/reports/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	var report Report
	if err = json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("admin: parse report failed: %w", err)
	}
	return &report, nil
}

// ResolveReport closes a report as actioned, with an optional reviewer note.
func (c *Client) ResolveReport(ctx context.Context, id, note string) (*Report, error) {
	return c.updateReportStatus(ctx, id, "resolved", note)
}

// DismissReport closes a report without action, with an optional reviewer note.
func (c *Client) DismissReport(ctx context.Context, id, note string) (*Report, error) {
	return c.updateReportStatus(ctx, id, "dismissed", note)
}

func (c *Client) updateReportStatus(ctx context.Context, id, status, note string) (*Report, error) {
	data, _, err := c.do(ctx, http.MethodPatch, "/admin/reports/"+id+"/status", nil,
		map[string]string{"status": status, "note": note})
	if err != nil {
		return nil, err
	}
	var report Report
	if err = json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("admin: parse report failed: %w", err)
	}
	return &report, nil
}
