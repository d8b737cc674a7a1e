package fideauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	goerrors "github.com/goliatone/go-errors"
)

// HTTPDirectory adapts an identity provider's administrative REST surface
// (GoTrue-style /admin/users endpoints) into the Directory interface. All
// calls authenticate with the service key; transport and non-2xx failures
// surface as ErrDirectoryUnavailable.
type HTTPDirectory struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	logger     Logger
}

// NewHTTPDirectory returns a directory adapter for the admin API at baseURL.
func NewHTTPDirectory(baseURL, serviceKey string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     http.DefaultClient,
		logger:     defLogger{},
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func (d *HTTPDirectory) WithHTTPClient(client *http.Client) *HTTPDirectory {
	if client != nil {
		d.client = client
	}
	return d
}

// WithLogger overrides the logger used by the adapter.
func (d *HTTPDirectory) WithLogger(logger Logger) *HTTPDirectory {
	if logger != nil {
		d.logger = logger
	}
	return d
}

type adminUserList struct {
	Users []Subject `json:"users"`
}

func (d *HTTPDirectory) ListSubjects(ctx context.Context) ([]Subject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/admin/users", nil)
	if err != nil {
		return nil, wrapDirectoryErr(err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, wrapDirectoryErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Error("directory list returned status %d", resp.StatusCode)
		return nil, wrapDirectoryErr(fmt.Errorf("admin user listing returned status %d", resp.StatusCode))
	}

	var list adminUserList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, wrapDirectoryErr(err)
	}

	return list.Users, nil
}

func (d *HTTPDirectory) ConfirmEmail(ctx context.Context, subjectID string) error {
	return d.updateSubject(ctx, subjectID, map[string]any{"email_confirm": true})
}

func (d *HTTPDirectory) SetPassword(ctx context.Context, subjectID, newPassword string) error {
	return d.updateSubject(ctx, subjectID, map[string]any{"password": newPassword})
}

func (d *HTTPDirectory) updateSubject(ctx context.Context, subjectID string, attrs map[string]any) error {
	body, err := json.Marshal(attrs)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to serialize subject update")
	}

	endpoint := d.baseURL + "/admin/users/" + url.PathEscape(subjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return wrapDirectoryErr(err)
	}
	req.Header.Set("Content-Type", "application/json")
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return wrapDirectoryErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrSubjectNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Error("directory update for %s returned status %d", subjectID, resp.StatusCode)
		return wrapDirectoryErr(fmt.Errorf("admin user update returned status %d", resp.StatusCode))
	}

	return nil
}

func (d *HTTPDirectory) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+d.serviceKey)
	req.Header.Set("apikey", d.serviceKey)
}
