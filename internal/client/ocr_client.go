package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ocrsdk/cloud-runner/internal/config"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

// RecognitionService defines the remote operations the pipelines rely on.
// Every call that starts or inspects a task returns the task's current state.
type RecognitionService interface {
	ProcessImage(ctx context.Context, params ImageParams, file io.Reader, name string) (*model.TaskInfo, error)
	SubmitImage(ctx context.Context, params SubmitParams, file io.Reader, name string) (*model.TaskInfo, error)
	ProcessDocument(ctx context.Context, params DocumentParams) (*model.TaskInfo, error)
	ProcessFields(ctx context.Context, params FieldsParams, settings io.Reader, name string) (*model.TaskInfo, error)
	ProcessTextField(ctx context.Context, params TextFieldParams, file io.Reader, name string) (*model.TaskInfo, error)
	ProcessBarcodeField(ctx context.Context, params BarcodeFieldParams, file io.Reader, name string) (*model.TaskInfo, error)
	ProcessCheckmarkField(ctx context.Context, params CheckmarkFieldParams, file io.Reader, name string) (*model.TaskInfo, error)
	ProcessBusinessCard(ctx context.Context, params BusinessCardParams, file io.Reader, name string) (*model.TaskInfo, error)
	ProcessMRZ(ctx context.Context, params MRZParams, file io.Reader, name string) (*model.TaskInfo, error)
	GetTaskStatus(ctx context.Context, taskID string) (*model.TaskInfo, error)
	ListTasks(ctx context.Context) ([]model.TaskInfo, error)
}

// ResultDownloader fetches a finished result by URL.
type ResultDownloader interface {
	DownloadResult(ctx context.Context, resultURL string) (io.ReadCloser, error)
}

// OCRClient implements RecognitionService and ResultDownloader for the Cloud OCR SDK v2 API
type OCRClient struct {
	httpClient     *http.Client
	downloadClient *http.Client
	baseURL        string
	applicationID  string
	password       string
}

type taskList struct {
	Tasks []model.TaskInfo `json:"tasks"`
}

// NewOCRClient creates a new recognition service client
func NewOCRClient(cfg *config.OCRConfig) *OCRClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OCRClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// Result files can be large; downloads are bounded by ctx only.
		downloadClient: &http.Client{},
		baseURL:        cfg.Host,
		applicationID:  cfg.ApplicationID,
		password:       cfg.Password,
	}
}

// ProcessImage uploads one image and starts its recognition
func (c *OCRClient) ProcessImage(ctx context.Context, params ImageParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return c.upload(ctx, "/v2/processImage", params.values(), file, name)
}

// SubmitImage uploads one page without starting recognition
func (c *OCRClient) SubmitImage(ctx context.Context, params SubmitParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return c.upload(ctx, "/v2/submitImage", params.values(), file, name)
}

// ProcessDocument starts recognition of the pages submitted to a task
func (c *OCRClient) ProcessDocument(ctx context.Context, params DocumentParams) (*model.TaskInfo, error) {
	var result model.TaskInfo
	if err := c.post(ctx, "/v2/processDocument", params.values(), nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessFields uploads an XML settings template and starts field recognition of the task's pages
func (c *OCRClient) ProcessFields(ctx context.Context, params FieldsParams, settings io.Reader, name string) (*model.TaskInfo, error) {
	var result model.TaskInfo
	log.Printf("[OCR API] uploading settings %s", name)
	if err := c.post(ctx, "/v2/processFields", params.values(), settings, "text/xml", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessTextField recognizes a text region of one image
func (c *OCRClient) ProcessTextField(ctx context.Context, params TextFieldParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return c.upload(ctx, "/v2/processTextField", params.values(), file, name)
}

// ProcessBarcodeField recognizes a barcode region of one image
func (c *OCRClient) ProcessBarcodeField(ctx context.Context, params BarcodeFieldParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return c.upload(ctx, "/v2/processBarcodeField", params.values(), file, name)
}

// ProcessCheckmarkField recognizes a checkmark region of one image
func (c *OCRClient) ProcessCheckmarkField(ctx context.Context, params CheckmarkFieldParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return c.upload(ctx, "/v2/processCheckmarkField", params.values(), file, name)
}

// ProcessBusinessCard recognizes a business card image
func (c *OCRClient) ProcessBusinessCard(ctx context.Context, params BusinessCardParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return c.upload(ctx, "/v2/processBusinessCard", params.values(), file, name)
}

// ProcessMRZ recognizes the machine-readable zone of an identity document
func (c *OCRClient) ProcessMRZ(ctx context.Context, params MRZParams, file io.Reader, name string) (*model.TaskInfo, error) {
	return c.upload(ctx, "/v2/processMRZ", params.values(), file, name)
}

// GetTaskStatus retrieves the current state of a task
func (c *OCRClient) GetTaskStatus(ctx context.Context, taskID string) (*model.TaskInfo, error) {
	query := url.Values{}
	query.Set("taskId", taskID)

	var result model.TaskInfo
	if err := c.get(ctx, "/v2/getTaskStatus", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTasks retrieves the tasks registered for the application
func (c *OCRClient) ListTasks(ctx context.Context) ([]model.TaskInfo, error) {
	var result taskList
	if err := c.get(ctx, "/v2/listTasks", nil, &result); err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

// DownloadResult opens a result URL. Result URLs are pre-signed, so no
// credentials are sent. The caller closes the returned body.
func (c *OCRClient) DownloadResult(ctx context.Context, resultURL string) (io.ReadCloser, error) {
	if resultURL == "" {
		return nil, fmt.Errorf("empty result url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Printf("[OCR API] → GET result %s", req.URL.Host+req.URL.Path)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		log.Printf("[OCR API] ✗ GET result: request failed: %v", err)
		return nil, fmt.Errorf("failed to download result: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return resp.Body, nil
}

// IsConfigured returns true if the client has credentials
func (c *OCRClient) IsConfigured() bool {
	return c.applicationID != "" && c.password != ""
}

// upload sends a file as the raw request body
func (c *OCRClient) upload(ctx context.Context, endpoint string, query url.Values, file io.Reader, name string) (*model.TaskInfo, error) {
	var result model.TaskInfo
	log.Printf("[OCR API] uploading %s", name)
	if err := c.post(ctx, endpoint, query, file, "application/octet-stream", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post sends a POST request with an optional body
func (c *OCRClient) post(ctx context.Context, endpoint string, query url.Values, body io.Reader, contentType string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(endpoint, query), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.doRequest(req, result)
}

// get sends a GET request and parses JSON response
func (c *OCRClient) get(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(endpoint, query), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

func (c *OCRClient) endpointURL(endpoint string, query url.Values) string {
	if len(query) == 0 {
		return c.baseURL + endpoint
	}
	return c.baseURL + endpoint + "?" + query.Encode()
}

// doRequest executes an HTTP request and parses the response
func (c *OCRClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.applicationID, c.password)

	log.Printf("[OCR API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[OCR API] ✗ %s %s: request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[OCR API] ✗ %s %s: failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[OCR API] ← %d %s %s", resp.StatusCode, req.Method, req.URL.Path)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		log.Printf("[OCR API] ✗ unmarshal error for %s %s: %v (body: %s)", req.Method, req.URL.String(), err, string(respBody))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
