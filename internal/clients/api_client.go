package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// TokenSource yields the bearer token to attach, or "" for none.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

type StoreAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, patch domain.ProductPatch) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) error
	DeleteProduct(ctx context.Context, id int64) error

	Login(ctx context.Context, email, password string) (string, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error

	CreatePayment(ctx context.Context, req domain.CheckoutRequest) (string, error)
	ListOrders(ctx context.Context, q domain.OrderQuery) ([]domain.Order, error)
	SalesStats(ctx context.Context, rangeKey string) (*domain.SalesStats, error)
	UploadImage(ctx context.Context, filename string, image io.Reader) (string, error)
}

type apiHTTPClient struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	log     *logrus.Logger
}

func NewStoreAPIClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *logrus.Logger) StoreAPI {
	return &apiHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
		log:    logger,
	}
}

func (c *apiHTTPClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/products", nil, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.log.Warnf("APIClient: /products did not return a list")
		return nil, &ShapeError{Endpoint: "/products", Reason: "expected a JSON array"}
	}

	var products []domain.Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, &ShapeError{Endpoint: "/products", Reason: "invalid product list", Err: err}
	}
	c.log.Infof("APIClient: Fetched %d products", len(products))
	return products, nil
}

func (c *apiHTTPClient) CreateProduct(ctx context.Context, patch domain.ProductPatch) (*domain.Product, error) {
	var created domain.Product
	if err := c.doJSON(ctx, http.MethodPost, "/products", patch, &created); err != nil {
		return nil, err
	}
	c.log.Infof("APIClient: Created product %d", created.ProductID)
	return &created, nil
}

func (c *apiHTTPClient) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) error {
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), patch, nil); err != nil {
		return err
	}
	c.log.Infof("APIClient: Updated product %d", id)
	return nil
}

func (c *apiHTTPClient) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil); err != nil {
		return err
	}
	c.log.Infof("APIClient: Deleted product %d", id)
	return nil
}

func (c *apiHTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *apiHTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/users/change-password", body, nil)
}

func (c *apiHTTPClient) CreatePayment(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	var resp struct {
		InitPoint string `json:"init_point"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/payments/create", req, &resp); err != nil {
		return "", err
	}
	return resp.InitPoint, nil
}

func (c *apiHTTPClient) ListOrders(ctx context.Context, q domain.OrderQuery) ([]domain.Order, error) {
	q = q.Normalize()
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Query != "" {
		params.Set("q", q.Query)
	}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	path := "/orders"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var orders []domain.Order
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *apiHTTPClient) SalesStats(ctx context.Context, rangeKey string) (*domain.SalesStats, error) {
	if rangeKey == "" {
		rangeKey = "month"
	}
	var stats domain.SalesStats
	path := "/stats/sales?range=" + url.QueryEscape(rangeKey)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	stats.Range = rangeKey
	return &stats, nil
}

func (c *apiHTTPClient) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &resp); err != nil {
		return "", err
	}
	c.log.Infof("APIClient: Uploaded image %s as %s", filename, resp.URL)
	return resp.URL, nil
}

func (c *apiHTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			c.log.Warnf("APIClient: Could not read session token: %v", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *apiHTTPClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// send performs the request once. Non-2xx becomes *HTTPError, transport
// failures *NetworkError and undecodable bodies *ShapeError.
func (c *apiHTTPClient) send(req *http.Request, out interface{}) error {
	endpoint := req.URL.Path
	c.log.Debugf("APIClient: %s %s", req.Method, req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("APIClient: Request %s %s failed: %v", req.Method, endpoint, err)
		return &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: req.Method, URL: req.URL.String(), Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload interface{}
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				payload = string(raw)
			}
		}
		httpErr := newHTTPError(resp.StatusCode, payload)
		c.log.Warnf("APIClient: %s %s returned status %d: %s", req.Method, endpoint, resp.StatusCode, httpErr.Message)
		return httpErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			if _, isRaw := out.(*json.RawMessage); isRaw {
				return &ShapeError{Endpoint: endpoint, Reason: "empty body"}
			}
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Errorf("APIClient: Failed to decode %s %s response: %v", req.Method, endpoint, err)
		return &ShapeError{Endpoint: endpoint, Reason: "invalid JSON", Err: err}
	}
	return nil
}

// ImageResolver maps stored image references to URLs the browser can load.
type ImageResolver struct {
	origin string
}

func NewImageResolver(apiOrigin string) ImageResolver {
	return ImageResolver{origin: strings.TrimRight(apiOrigin, "/")}
}

func (r ImageResolver) Resolve(image string) string {
	switch {
	case image == "":
		return domain.DefaultImage
	case strings.HasPrefix(image, "http"):
		return image
	case strings.HasPrefix(image, "/uploads/"):
		return r.origin + image
	default:
		return image
	}
}
